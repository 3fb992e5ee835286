package relation

import (
	"errors"
	"sync"
	"testing"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		tier      core.Tier
		opts      []Option
		errSubstr string
	}{
		{name: "manual", id: "Animal", tier: core.TierManual},
		{name: "lookup with contents", id: "Species", tier: core.TierLookup, opts: []Option{WithContents([]Row{{"name": "mouse"}})}},
		{name: "computed with populator", id: "Spikes", tier: core.TierComputed, opts: []Option{WithPopulator(noopPopulator())}},
		{name: "imported without populator", id: "Recording", tier: core.TierImported, errSubstr: "require a populator"},
		{name: "computed without populator", id: "Spikes", tier: core.TierComputed, errSubstr: "require a populator"},
		{name: "manual with populator", id: "Animal", tier: core.TierManual, opts: []Option{WithPopulator(noopPopulator())}, errSubstr: "cannot have a populator"},
		{name: "part with populator", id: "Session", tier: core.TierPart, opts: []Option{WithPopulator(noopPopulator())}, errSubstr: "cannot have a populator"},
		{name: "manual with contents", id: "Animal", tier: core.TierManual, opts: []Option{WithContents([]Row{{"a": 1}})}, errSubstr: "only lookup"},
		{name: "invalid tier", id: "Animal", tier: core.TierUnknown, errSubstr: "invalid tier"},
		{name: "invalid identifier", id: "animal", tier: core.TierManual, errSubstr: "capital letter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.id, tt.tier, tt.opts...)
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, r.Identifier())
			assert.Equal(t, tt.tier, r.Tier())
			assert.Equal(t, tt.tier.RequiresPopulator(), r.HasPopulator())
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew("bad_name", core.TierManual) })
}

func TestRelation_TableName(t *testing.T) {
	tests := []struct {
		rel  *Relation
		want string
	}{
		{MustNew("MySession", core.TierManual), "my_session"},
		{MustNew("MySession", core.TierLookup), "#my_session"},
		{MustNew("MySession", core.TierImported, WithPopulator(noopPopulator())), "_my_session"},
		{MustNew("MySession", core.TierComputed, WithPopulator(noopPopulator())), "__my_session"},
	}

	for _, tt := range tests {
		t.Run(tt.rel.String(), func(t *testing.T) {
			got, err := tt.rel.TableName()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rel.Prefix(), tt.want[:len(tt.rel.Prefix())])
		})
	}
}

func TestRelation_PartLifecycle(t *testing.T) {
	animal := MustNew("Animal", core.TierManual)
	session := MustNew("Session", core.TierPart)

	_, err := session.TableName()
	var unbound *core.UnboundMasterError
	require.True(t, errors.As(err, &unbound), "table name before bind should fail with UnboundMasterError")

	require.NoError(t, session.BindMaster(animal))
	assert.Same(t, animal, session.Master())

	name, err := session.TableName()
	require.NoError(t, err)
	assert.Equal(t, "animal__session", name)

	// The master slot is written once.
	err = session.BindMaster(MustNew("Other", core.TierManual))
	require.ErrorIs(t, err, core.ErrMasterAlreadyBound)
	assert.Same(t, animal, session.Master())

	name, err = session.TableName()
	require.NoError(t, err)
	assert.Equal(t, "animal__session", name)
}

func TestRelation_BindMaster_Errors(t *testing.T) {
	part := MustNew("Session", core.TierPart)

	var unbound *core.UnboundMasterError
	require.True(t, errors.As(part.BindMaster(nil), &unbound))
	require.True(t, errors.As(part.BindMaster(MustNew("Trial", core.TierPart)), &unbound))
	assert.Equal(t, core.TierPart, unbound.MasterTier)
	assert.Nil(t, part.Master())

	err := MustNew("Animal", core.TierManual).BindMaster(MustNew("Lab", core.TierManual))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only part relations")
}

func TestRelation_FullTableName(t *testing.T) {
	rel := MustNew("MySession", core.TierComputed, WithPopulator(noopPopulator()))

	for _, db := range []string{"lab", "my_pipeline", "x"} {
		got, err := rel.FullTableName(db)
		require.NoError(t, err)
		assert.Equal(t, "`"+db+"`.`__my_session`", got)
	}

	_, err := rel.FullTableName("")
	assert.ErrorIs(t, err, core.ErrEmptyDatabase)

	unbound := MustNew("Session", core.TierPart)
	_, err = unbound.FullTableName("lab")
	var ub *core.UnboundMasterError
	assert.True(t, errors.As(err, &ub))
}

func TestRelation_ConcurrentTableName(t *testing.T) {
	master := MustNew("ProbeInsertion", core.TierManual)
	part := MustNew("Channel", core.TierPart)
	require.NoError(t, part.BindMaster(master))

	const readers = 32
	results := make([]string, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, err := part.TableName()
			if err == nil {
				results[i] = name
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "probe_insertion__channel", got)
	}
}

func TestRelation_Contents(t *testing.T) {
	rows := []Row{{"name": "mouse"}, {"name": "rat"}}
	rel := MustNew("Species", core.TierLookup, WithContents(rows))
	assert.Equal(t, rows, rel.Contents())
	assert.Nil(t, MustNew("Animal", core.TierManual).Contents())
}
