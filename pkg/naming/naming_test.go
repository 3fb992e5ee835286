package naming

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToStorageName(t *testing.T) {
	tests := []struct {
		identifier string
		want       string
	}{
		{"MySession", "my_session"},
		{"Session", "session"},
		{"Animal", "animal"},
		{"Scan2Photon", "scan2_photon"},
		{"Ephys", "ephys"},
		{"ProbeInsertion", "probe_insertion"},
		{"A", "a"},
		{"A1", "a1"},
		{"TwoPStack", "two_p_stack"},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			got, err := ToStorageName(tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToStorageName_Errors(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		errSubstr  string
	}{
		{"empty", "", "empty"},
		{"lowercase start", "mySession", "capital letter"},
		{"digit start", "2Photon", "capital letter"},
		{"underscore", "My_Session", "letters and digits"},
		{"space", "My Session", "letters and digits"},
		{"non-ascii", "Séance", "letters and digits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToStorageName(tt.identifier)
			require.Error(t, err)

			var namingErr *core.NamingError
			require.True(t, errors.As(err, &namingErr), "expected *core.NamingError, got %T", err)
			assert.Equal(t, tt.identifier, namingErr.Identifier)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestToStorageName_Deterministic(t *testing.T) {
	first, err := ToStorageName("ProbeInsertion")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		got, err := ToStorageName("ProbeInsertion")
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestIsStorageName(t *testing.T) {
	assert.True(t, IsStorageName("my_session"))
	assert.True(t, IsStorageName("scan2_photon"))
	assert.False(t, IsStorageName("my__session"))
	assert.False(t, IsStorageName("_session"))
	assert.False(t, IsStorageName("session_"))
	assert.False(t, IsStorageName("my_2session"))
	assert.False(t, IsStorageName("Session"))
	assert.False(t, IsStorageName(""))
}
