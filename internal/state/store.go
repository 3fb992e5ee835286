// Package state keeps a catalog of derived relation names in SQLite so a
// relation's storage name can be checked for stability across runs.
package state

import (
	"time"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/relation"
)

// Store is the catalog interface.
type Store interface {
	Migrate() error
	RecordRelations(database string, rels []*relation.Relation) error
	ListRelations(database string) ([]RecordedRelation, error)
	Drift(database string, rels []*relation.Relation) ([]DriftEntry, error)
	Close() error
}

// RecordedRelation is one catalog row.
type RecordedRelation struct {
	ID         string
	Database   string
	Identifier string
	Tier       core.Tier
	TableName  string
	Master     string // master identifier, Part only
	RecordedAt time.Time
}

// DriftKind classifies a difference between the catalog and the schema.
type DriftKind string

// Drift kinds.
const (
	DriftAdded   DriftKind = "added"
	DriftRemoved DriftKind = "removed"
	DriftRenamed DriftKind = "renamed"
)

// DriftEntry describes one relation whose derived name no longer matches
// the catalog.
type DriftEntry struct {
	Identifier string
	Kind       DriftKind
	Recorded   string // recorded table name, empty for DriftAdded
	Current    string // derived table name, empty for DriftRemoved
}

var _ Store = (*SQLiteStore)(nil)
