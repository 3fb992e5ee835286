// Package sqlite provides the SQLite engine for tiersql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"slices"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/engine"

	_ "modernc.org/sqlite" // sqlite driver
)

const memoryPath = ":memory:"

// Engine implements core.Engine for SQLite.
type Engine struct {
	engine.SQLEngine
}

// New creates a new SQLite engine.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		SQLEngine: engine.SQLEngine{
			Driver:       "sqlite",
			DSN:          buildSQLiteDSN,
			Logger:       logger,
			AfterConnect: pinMemoryDatabase,
		},
	}
}

// buildSQLiteDSN returns the database path with options rendered as
// _pragma parameters, sorted by name.
func buildSQLiteDSN(cfg core.ConnectionConfig) (string, error) {
	path := cfg.Path
	if path == "" {
		path = memoryPath
	}
	if len(cfg.Options) == 0 {
		return path, nil
	}

	q := url.Values{}
	for _, name := range slices.Sorted(maps.Keys(cfg.Options)) {
		if name == "" {
			return "", fmt.Errorf("sqlite: empty pragma name")
		}
		q.Add("_pragma", fmt.Sprintf("%s(%s)", name, cfg.Options[name]))
	}
	return path + "?" + q.Encode(), nil
}

// pinMemoryDatabase limits an in-memory database to one connection; each
// new SQLite connection to :memory: would otherwise see an empty database.
func pinMemoryDatabase(_ context.Context, db *sql.DB, cfg core.ConnectionConfig) error {
	if cfg.Path == "" || cfg.Path == memoryPath {
		db.SetMaxOpenConns(1)
	}
	return nil
}

var _ core.Engine = (*Engine)(nil)
