package core

// ProjectConfig holds project-level configuration.
type ProjectConfig struct {
	SchemaFile string        `koanf:"schema_file"`
	Target     *TargetConfig `koanf:"target"`
}

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // mysql, postgres, duckdb, sqlite

	// Database is the database name for network engines or the file path
	// for file-based engines (DuckDB, SQLite).
	Database string `koanf:"database"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Reset and UseTLS are forwarded verbatim to the engine.
	Reset  bool `koanf:"reset"`
	UseTLS bool `koanf:"use_tls"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds engine-specific configuration (e.g., DuckDB extensions, settings)
	Params map[string]any `koanf:"params"`
}

// ConnectionConfig converts the target into the configuration handed to an engine.
func (t *TargetConfig) ConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Type:     t.Type,
		Host:     t.Host,
		Port:     t.Port,
		User:     t.User,
		Password: t.Password,
		Database: t.Database,
		Path:     t.Database,
		Reset:    t.Reset,
		UseTLS:   t.UseTLS,
		Options:  t.Options,
		Params:   t.Params,
	}
}
