// Package mysql provides the MySQL engine for tiersql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/engine"
)

// Engine implements core.Engine for MySQL and MariaDB.
type Engine struct {
	engine.SQLEngine
}

// New creates a new MySQL engine.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		SQLEngine: engine.SQLEngine{
			Driver:       "mysql",
			DSN:          buildMySQLDSN,
			Logger:       logger,
			AfterConnect: applyReset,
		},
	}
}

// buildMySQLDSN constructs a go-sql-driver DSN. The database may be empty:
// relations address tables by full `database`.`table` name.
func buildMySQLDSN(cfg core.ConnectionConfig) (string, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	if cfg.UseTLS {
		mc.TLSConfig = "true"
	}

	if len(cfg.Options) > 0 {
		mc.Params = make(map[string]string, len(cfg.Options))
		for k, v := range cfg.Options {
			if k == "tls" {
				mc.TLSConfig = v
				continue
			}
			mc.Params[k] = v
		}
	}

	dsn := mc.FormatDSN()
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return "", fmt.Errorf("mysql: %w", err)
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
