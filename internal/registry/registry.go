// Package registry indexes bound relations by identifier and storage name.
// It maps table names found in a database back to the relations that own
// them.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/leapstack-labs/tiersql/pkg/relation"
)

// CollisionError is returned when two relations derive the same table name.
type CollisionError struct {
	Table    string
	Existing string
	New      string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("relations %s and %s both map to table %q", e.Existing, e.New, e.Table)
}

// DuplicateError is returned when an identifier is registered twice.
type DuplicateError struct {
	Identifier string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("relation %s is already registered", e.Identifier)
}

// RelationRegistry maps identifiers and table names to relations.
type RelationRegistry struct {
	mu sync.RWMutex

	// byIdentifier: "MySession" → relation
	byIdentifier map[string]*relation.Relation

	// byTable: "my_session" → relation
	byTable map[string]*relation.Relation

	// order keeps registration order for listing
	order []*relation.Relation

	// unmanaged tracks table names seen in a database that no relation owns
	unmanaged map[string]struct{}
}

// NewRelationRegistry creates an empty registry.
func NewRelationRegistry() *RelationRegistry {
	return &RelationRegistry{
		byIdentifier: make(map[string]*relation.Relation),
		byTable:      make(map[string]*relation.Relation),
		unmanaged:    make(map[string]struct{}),
	}
}

// Register adds a relation. Its table name is derived here, so Part
// relations must already be bound to their master.
func (r *RelationRegistry) Register(rel *relation.Relation) error {
	table, err := rel.TableName()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byIdentifier[rel.Identifier()]; ok {
		return &DuplicateError{Identifier: rel.Identifier()}
	}
	if existing, ok := r.byTable[table]; ok {
		return &CollisionError{Table: table, Existing: existing.Identifier(), New: rel.Identifier()}
	}

	r.byIdentifier[rel.Identifier()] = rel
	r.byTable[table] = rel
	r.order = append(r.order, rel)
	delete(r.unmanaged, table)
	return nil
}

// RegisterAll registers rels in order and stops at the first error.
func (r *RelationRegistry) RegisterAll(rels []*relation.Relation) error {
	for _, rel := range rels {
		if err := r.Register(rel); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the relation registered under identifier.
func (r *RelationRegistry) Get(identifier string) (*relation.Relation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rel, ok := r.byIdentifier[identifier]
	return rel, ok
}

// Resolve maps a table name to its relation. Qualified names
// ("lab.animal", "`lab`.`animal`") resolve by their last component.
func (r *RelationRegistry) Resolve(tableName string) (*relation.Relation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rel, ok := r.byTable[tableName]; ok {
		return rel, true
	}

	if name := unqualify(tableName); name != tableName {
		rel, ok := r.byTable[name]
		return rel, ok
	}
	return nil, false
}

// Classify resolves tableName to a registered relation, falling back to
// pattern classification for names no relation owns. The returned relation
// is nil in the fallback case.
func (r *RelationRegistry) Classify(tableName string) (relation.Classification, *relation.Relation, error) {
	if rel, ok := r.Resolve(tableName); ok {
		return classificationOf(rel), rel, nil
	}
	c, err := relation.Classify(unqualify(tableName))
	return c, nil, err
}

// ResolveTables splits table names into registered relations (deduplicated)
// and names no relation owns. Unowned names are remembered.
func (r *RelationRegistry) ResolveTables(tableNames []string) (known []*relation.Relation, unmanaged []string) {
	seenKnown := make(map[*relation.Relation]struct{})
	seenUnmanaged := make(map[string]struct{})

	for _, name := range tableNames {
		if rel, ok := r.Resolve(name); ok {
			if _, seen := seenKnown[rel]; !seen {
				seenKnown[rel] = struct{}{}
				known = append(known, rel)
			}
			continue
		}
		if _, seen := seenUnmanaged[name]; !seen {
			seenUnmanaged[name] = struct{}{}
			unmanaged = append(unmanaged, name)
		}
	}

	if len(unmanaged) > 0 {
		r.mu.Lock()
		for _, name := range unmanaged {
			r.unmanaged[name] = struct{}{}
		}
		r.mu.Unlock()
	}
	return known, unmanaged
}

// IsUnmanaged reports whether tableName was seen by ResolveTables without
// an owning relation.
func (r *RelationRegistry) IsUnmanaged(tableName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.unmanaged[tableName]
	return ok
}

// Parts returns the Part relations bound to master, in registration order.
func (r *RelationRegistry) Parts(master *relation.Relation) []*relation.Relation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var parts []*relation.Relation
	for _, rel := range r.order {
		if rel.Master() == master {
			parts = append(parts, rel)
		}
	}
	return parts
}

// All returns every registered relation in registration order.
func (r *RelationRegistry) All() []*relation.Relation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*relation.Relation, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered relations.
func (r *RelationRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func unqualify(tableName string) string {
	if i := strings.LastIndex(tableName, "."); i >= 0 {
		tableName = tableName[i+1:]
	}
	return strings.Trim(tableName, "`\"")
}

func classificationOf(rel *relation.Relation) relation.Classification {
	// Registered relations always have a table name.
	name, _ := rel.TableName()
	c := relation.Classification{Name: name, Tier: rel.Tier()}
	if master := rel.Master(); master != nil {
		c.Master, _ = master.TableName()
		c.MasterTier = master.Tier()
		c.Part = strings.TrimPrefix(name, c.Master+"__")
	}
	return c
}
