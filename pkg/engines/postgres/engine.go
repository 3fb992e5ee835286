// Package postgres provides the PostgreSQL engine for tiersql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/engine"
)

// Engine implements core.Engine for PostgreSQL via pgx.
type Engine struct {
	engine.SQLEngine
}

// New creates a new PostgreSQL engine.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		SQLEngine: engine.SQLEngine{
			Driver:       "pgx",
			DSN:          buildPostgresDSN,
			Logger:       logger,
			AfterConnect: applyReset,
		},
	}
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
// UseTLS requests sslmode=require unless an explicit sslmode option is set.
func buildPostgresDSN(cfg core.ConnectionConfig) (string, error) {
	if cfg.Database == "" {
		return "", fmt.Errorf("postgres: database is required")
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.UseTLS {
		sslmode = "require"
	}
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn, nil
}

// applyReset disables idle connection reuse so every query starts on a
// fresh server session.
func applyReset(_ context.Context, db *sql.DB, cfg core.ConnectionConfig) error {
	if cfg.Reset {
		db.SetMaxIdleConns(0)
	}
	return nil
}

var _ core.Engine = (*Engine)(nil)
