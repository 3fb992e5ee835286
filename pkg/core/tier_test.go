package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTier_String(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierManual, "manual"},
		{TierLookup, "lookup"},
		{TierImported, "imported"},
		{TierComputed, "computed"},
		{TierPart, "part"},
		{TierUnknown, "tier(0)"},
		{Tier(42), "tier(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tier.String())
		})
	}
}

func TestTier_Capabilities(t *testing.T) {
	tests := []struct {
		tier          Tier
		canBeMaster   bool
		needsPopulate bool
	}{
		{TierManual, true, false},
		{TierLookup, true, false},
		{TierImported, true, true},
		{TierComputed, true, true},
		{TierPart, false, false},
		{TierUnknown, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			assert.Equal(t, tt.canBeMaster, tt.tier.CanBeMaster(), "CanBeMaster")
			assert.Equal(t, tt.needsPopulate, tt.tier.RequiresPopulator(), "RequiresPopulator")
		})
	}
}

func TestParseTier(t *testing.T) {
	for _, tier := range AllTiers() {
		got, err := ParseTier(tier.String())
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}

	got, err := ParseTier("  Computed ")
	require.NoError(t, err)
	assert.Equal(t, TierComputed, got)

	_, err = ParseTier("derived")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tier")
}

func TestTier_IsValid(t *testing.T) {
	assert.False(t, TierUnknown.IsValid())
	assert.False(t, Tier(99).IsValid())
	for _, tier := range AllTiers() {
		assert.True(t, tier.IsValid(), tier.String())
	}
}
