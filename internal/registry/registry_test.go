package registry

import (
	"sync"
	"testing"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/relation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labRelations(t *testing.T) (animal, session, species *relation.Relation) {
	t.Helper()
	animal = relation.MustNew("Animal", core.TierManual)
	session = relation.MustNew("Session", core.TierPart)
	require.NoError(t, session.BindMaster(animal))
	species = relation.MustNew("Species", core.TierLookup)
	return animal, session, species
}

func TestRelationRegistry_Register(t *testing.T) {
	r := NewRelationRegistry()
	animal, session, species := labRelations(t)

	require.NoError(t, r.RegisterAll([]*relation.Relation{animal, session, species}))
	assert.Equal(t, 3, r.Count())

	got, ok := r.Get("Session")
	require.True(t, ok)
	assert.Same(t, session, got)

	assert.Equal(t, []*relation.Relation{animal, session, species}, r.All())
	assert.Equal(t, []*relation.Relation{session}, r.Parts(animal))
	assert.Empty(t, r.Parts(species))
}

func TestRelationRegistry_RegisterErrors(t *testing.T) {
	t.Run("duplicate identifier", func(t *testing.T) {
		r := NewRelationRegistry()
		require.NoError(t, r.Register(relation.MustNew("Animal", core.TierManual)))

		err := r.Register(relation.MustNew("Animal", core.TierLookup))
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "Animal", dup.Identifier)
	})

	t.Run("unbound part", func(t *testing.T) {
		r := NewRelationRegistry()
		err := r.Register(relation.MustNew("Probe", core.TierPart))
		var unbound *core.UnboundMasterError
		require.ErrorAs(t, err, &unbound)
		assert.Zero(t, r.Count())
	})
}

func TestCollisionError(t *testing.T) {
	err := &CollisionError{Table: "animal", Existing: "Animal", New: "AnimalAlias"}
	assert.Equal(t, `relations Animal and AnimalAlias both map to table "animal"`, err.Error())
}

func TestRelationRegistry_Resolve(t *testing.T) {
	r := NewRelationRegistry()
	animal, session, species := labRelations(t)
	require.NoError(t, r.RegisterAll([]*relation.Relation{animal, session, species}))

	tests := []struct {
		name      string
		tableName string
		want      *relation.Relation
	}{
		{name: "manual", tableName: "animal", want: animal},
		{name: "part", tableName: "animal__session", want: session},
		{name: "lookup", tableName: "#species", want: species},
		{name: "qualified", tableName: "lab.animal", want: animal},
		{name: "quoted qualified", tableName: "`lab`.`#species`", want: species},
		{name: "unknown", tableName: "subject", want: nil},
		{name: "unknown qualified", tableName: "lab.subject", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.tableName)
			assert.Equal(t, tt.want != nil, ok)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestRelationRegistry_Classify(t *testing.T) {
	r := NewRelationRegistry()
	animal, session, species := labRelations(t)
	require.NoError(t, r.RegisterAll([]*relation.Relation{animal, session, species}))

	c, rel, err := r.Classify("animal__session")
	require.NoError(t, err)
	assert.Same(t, session, rel)
	assert.Equal(t, core.TierPart, c.Tier)
	assert.Equal(t, "animal", c.Master)
	assert.Equal(t, core.TierManual, c.MasterTier)
	assert.Equal(t, "session", c.Part)

	c, rel, err = r.Classify("lab.__spike_sorting")
	require.NoError(t, err)
	assert.Nil(t, rel)
	assert.Equal(t, core.TierComputed, c.Tier)

	_, _, err = r.Classify("NotAStorageName")
	var naming *core.NamingError
	require.ErrorAs(t, err, &naming)
}

func TestRelationRegistry_ResolveTables(t *testing.T) {
	r := NewRelationRegistry()
	animal, session, species := labRelations(t)
	require.NoError(t, r.RegisterAll([]*relation.Relation{animal, session, species}))

	known, unmanaged := r.ResolveTables([]string{"animal", "lab.animal", "subject", "animal__session", "subject"})
	assert.Equal(t, []*relation.Relation{animal, session}, known)
	assert.Equal(t, []string{"subject"}, unmanaged)
	assert.True(t, r.IsUnmanaged("subject"))
	assert.False(t, r.IsUnmanaged("animal"))
}

func TestRelationRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRelationRegistry()
	animal, session, species := labRelations(t)
	require.NoError(t, r.RegisterAll([]*relation.Relation{animal, session, species}))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := r.Resolve("animal__session")
			assert.True(t, ok)
			r.ResolveTables([]string{"other"})
		}()
	}
	wg.Wait()
	assert.True(t, r.IsUnmanaged("other"))
}
