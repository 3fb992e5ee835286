// Package duckdb provides the DuckDB engine for tiersql.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/engine"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Engine implements core.Engine for DuckDB.
type Engine struct {
	engine.SQLEngine
}

// New creates a new DuckDB engine.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		SQLEngine: engine.SQLEngine{
			Driver: "duckdb",
			DSN:    buildDuckDBDSN,
			Logger: logger,
		},
	}
	e.AfterConnect = e.applyParams
	return e
}

// buildDuckDBDSN returns the database path. An empty path opens an
// in-memory database. Params are validated here so bad config fails
// before connect.
func buildDuckDBDSN(cfg core.ConnectionConfig) (string, error) {
	if _, err := parseParams(cfg.Params); err != nil {
		return "", err
	}
	if cfg.Path == "" {
		return ":memory:", nil
	}
	return cfg.Path, nil
}

func (e *Engine) applyParams(ctx context.Context, db *sql.DB, cfg core.ConnectionConfig) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	for _, stmt := range paramStatements(params) {
		e.Logger.Debug("applying duckdb param", slog.String("sql", stmt))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply duckdb params (%s): %w", stmt, err)
		}
	}
	return nil
}

// paramStatements renders params as SQL in a stable order: extensions first,
// then settings sorted by name.
func paramStatements(p *Params) []string {
	var stmts []string
	for _, ext := range p.Extensions {
		stmts = append(stmts, fmt.Sprintf("INSTALL %s", ext), fmt.Sprintf("LOAD %s", ext))
	}
	for _, name := range slices.Sorted(maps.Keys(p.Settings)) {
		stmts = append(stmts, fmt.Sprintf("SET %s = '%s'", name, strings.ReplaceAll(p.Settings[name], "'", "''")))
	}
	return stmts
}

var _ core.Engine = (*Engine)(nil)
