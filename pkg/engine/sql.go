package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/leapstack-labs/tiersql/pkg/core"
)

// DSNFunc builds a driver connection string from a connection config.
type DSNFunc func(cfg core.ConnectionConfig) (string, error)

// SQLEngine implements core.Engine on top of database/sql.
// Concrete engines embed it and supply the driver name and DSN builder.
type SQLEngine struct {
	Driver string
	DSN    DSNFunc
	Logger *slog.Logger

	// AfterConnect runs once the pool answers a ping, e.g. to load extensions.
	AfterConnect func(ctx context.Context, db *sql.DB, cfg core.ConnectionConfig) error

	// Open defaults to sql.Open. Tests swap it for sqlmock.
	Open func(driverName, dsn string) (*sql.DB, error)
}

// SQLHandle is the handle allocated by SQLEngine. It owns one *sql.DB.
type SQLHandle struct {
	id  string
	cfg core.ConnectionConfig
	dsn string

	mu sync.Mutex
	db *sql.DB
}

// ID returns the handle's unique id.
func (h *SQLHandle) ID() string { return h.id }

// DB returns the underlying pool, nil before Connect or after Free.
func (h *SQLHandle) DB() *sql.DB {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db
}

func (e *SQLEngine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// New allocates a handle. The DSN is built here so configuration errors
// surface before any dialing.
func (e *SQLEngine) New(cfg core.ConnectionConfig) (core.Handle, error) {
	if e.DSN == nil {
		return nil, fmt.Errorf("%s: no DSN builder configured", e.Driver)
	}
	dsn, err := e.DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid connection config: %w", e.Driver, err)
	}
	h := &SQLHandle{id: uuid.NewString(), cfg: cfg, dsn: dsn}
	e.logger().Debug("allocated handle", slog.String("driver", e.Driver), slog.String("handle_id", h.id))
	return h, nil
}

// Connect opens the pool behind h and pings it.
func (e *SQLEngine) Connect(ctx context.Context, h core.Handle) error {
	sh, err := e.handle(h)
	if err != nil {
		return err
	}

	open := e.Open
	if open == nil {
		open = sql.Open
	}

	e.logger().Debug("connecting", slog.String("driver", e.Driver), slog.String("host", sh.cfg.Host), slog.String("database", sh.cfg.Database))

	db, err := open(e.Driver, sh.dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", e.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", e.Driver, err)
	}
	if e.AfterConnect != nil {
		if err := e.AfterConnect(ctx, db, sh.cfg); err != nil {
			_ = db.Close()
			return err
		}
	}

	sh.mu.Lock()
	old := sh.db
	sh.db = db
	sh.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// RawQuery runs query verbatim and returns the open *sql.Rows.
func (e *SQLEngine) RawQuery(ctx context.Context, h core.Handle, query []byte) (core.Result, error) {
	sh, err := e.handle(h)
	if err != nil {
		return nil, err
	}
	db := sh.DB()
	if db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := db.QueryContext(ctx, string(query))
	if err != nil {
		return nil, markConnectionLost(err)
	}
	return rows, nil
}

// markConnectionLost tags driver errors that mean the pool can no longer
// serve the handle with core.ErrConnectionLost.
func markConnectionLost(err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", core.ErrConnectionLost, err)
	}
	return err
}

// Free closes the pool behind h. Freeing an unconnected or already freed
// handle is a no-op.
func (e *SQLEngine) Free(h core.Handle) error {
	sh, err := e.handle(h)
	if err != nil {
		return err
	}

	sh.mu.Lock()
	db := sh.db
	sh.db = nil
	sh.mu.Unlock()

	if db == nil {
		return nil
	}
	e.logger().Debug("closing database connection", slog.String("driver", e.Driver), slog.String("handle_id", sh.id))
	return db.Close()
}

func (e *SQLEngine) handle(h core.Handle) (*SQLHandle, error) {
	sh, ok := h.(*SQLHandle)
	if !ok || sh == nil {
		return nil, fmt.Errorf("%s: foreign handle %T", e.Driver, h)
	}
	return sh, nil
}

var _ core.Engine = (*SQLEngine)(nil)
