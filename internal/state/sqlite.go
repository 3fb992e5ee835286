package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/relation"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new, unopened store.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens the catalog at path and applies migrations.
func Open(path string) (*SQLiteStore, error) {
	s := NewSQLiteStore()
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens a connection to the SQLite file at path, creating parent
// directories as needed. Use ":memory:" for an in-memory catalog.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create catalog directory: %w", err)
			}
		}
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	if path == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping catalog: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the catalog.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func generateID() string {
	return uuid.New().String()
}

// RecordRelations makes the catalog for database match rels: new relations
// are inserted, changed ones updated in place and relations no longer
// declared are removed.
func (s *SQLiteStore) RecordRelations(database string, rels []*relation.Relation) error {
	if s.db == nil {
		return errNotOpened
	}
	if database == "" {
		return core.ErrEmptyDatabase
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert, err := tx.Prepare(`
		INSERT INTO relations (id, database_name, identifier, tier, table_name, master, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (database_name, identifier) DO UPDATE SET
			tier = excluded.tier,
			table_name = excluded.table_name,
			master = excluded.master,
			recorded_at = excluded.recorded_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = upsert.Close() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	keep := make(map[string]struct{}, len(rels))
	for _, rel := range rels {
		table, err := rel.TableName()
		if err != nil {
			return err
		}
		var master sql.NullString
		if m := rel.Master(); m != nil {
			master = sql.NullString{String: m.Identifier(), Valid: true}
		}
		if _, err := upsert.Exec(generateID(), database, rel.Identifier(), rel.Tier().String(), table, master, now); err != nil {
			return fmt.Errorf("failed to record relation %s: %w", rel.Identifier(), err)
		}
		keep[rel.Identifier()] = struct{}{}
	}

	recorded, err := listRelations(tx, database)
	if err != nil {
		return err
	}
	for _, r := range recorded {
		if _, ok := keep[r.Identifier]; ok {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM relations WHERE id = ?`, r.ID); err != nil {
			return fmt.Errorf("failed to remove relation %s: %w", r.Identifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// ListRelations returns the recorded relations of database ordered by
// identifier.
func (s *SQLiteStore) ListRelations(database string) ([]RecordedRelation, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	return listRelations(s.db, database)
}

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func listRelations(q querier, database string) ([]RecordedRelation, error) {
	rows, err := q.Query(`
		SELECT id, database_name, identifier, tier, table_name, master, recorded_at
		FROM relations WHERE database_name = ? ORDER BY identifier`, database)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RecordedRelation
	for rows.Next() {
		var (
			r          RecordedRelation
			tier       string
			master     sql.NullString
			recordedAt string
		)
		if err := rows.Scan(&r.ID, &r.Database, &r.Identifier, &tier, &r.TableName, &master, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		if r.Tier, err = core.ParseTier(tier); err != nil {
			return nil, fmt.Errorf("relation %s: %w", r.Identifier, err)
		}
		if r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("relation %s: bad recorded_at: %w", r.Identifier, err)
		}
		r.Master = master.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Drift compares the derived table names of rels with the catalog for
// database. Entries are ordered by identifier.
func (s *SQLiteStore) Drift(database string, rels []*relation.Relation) ([]DriftEntry, error) {
	recorded, err := s.ListRelations(database)
	if err != nil {
		return nil, err
	}

	byIdentifier := make(map[string]RecordedRelation, len(recorded))
	for _, r := range recorded {
		byIdentifier[r.Identifier] = r
	}

	var drift []DriftEntry
	for _, rel := range rels {
		table, err := rel.TableName()
		if err != nil {
			return nil, err
		}
		r, ok := byIdentifier[rel.Identifier()]
		delete(byIdentifier, rel.Identifier())
		switch {
		case !ok:
			drift = append(drift, DriftEntry{Identifier: rel.Identifier(), Kind: DriftAdded, Current: table})
		case r.TableName != table:
			drift = append(drift, DriftEntry{Identifier: rel.Identifier(), Kind: DriftRenamed, Recorded: r.TableName, Current: table})
		}
	}
	for _, r := range byIdentifier {
		drift = append(drift, DriftEntry{Identifier: r.Identifier, Kind: DriftRemoved, Recorded: r.TableName})
	}

	sort.Slice(drift, func(i, j int) bool { return drift[i].Identifier < drift[j].Identifier })
	return drift, nil
}
