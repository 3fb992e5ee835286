package core

import "context"

// Engine is the narrow capability set consumed from a native backing-store
// engine. The session layer depends only on this interface; production code
// binds it to a real driver and tests substitute an in-memory fake.
type Engine interface {
	// New allocates an unconnected handle. No network activity happens here.
	New(cfg ConnectionConfig) (Handle, error)

	// Connect establishes the native session behind h.
	Connect(ctx context.Context, h Handle) error

	// RawQuery forwards query bytes verbatim and returns an opaque result.
	RawQuery(ctx context.Context, h Handle, query []byte) (Result, error)

	// Free releases every native resource held by h.
	Free(h Handle) error
}

// Handle is an opaque native resource owned by exactly one session.
type Handle interface {
	// ID identifies the handle in logs. It is unique per allocation.
	ID() string
}

// Result is the opaque value returned by a raw query. *sql.Rows satisfies it.
type Result interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// ColumnTyper is implemented by results that can describe their column types.
type ColumnTyper interface {
	ColumnTypeNames() ([]string, error)
}

// ConnectionConfig holds everything an engine needs to allocate a handle.
type ConnectionConfig struct {
	Type     string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	// Path is used by file-based engines (DuckDB, SQLite).
	Path string
	// Reset and UseTLS are opaque flags; their meaning belongs to the engine.
	Reset   bool
	UseTLS  bool
	Options map[string]string
	Params  map[string]any
}
