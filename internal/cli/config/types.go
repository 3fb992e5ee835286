// Package config provides configuration management for the tiersql CLI.
//
// Shared target types live in pkg/core and are re-exported here via type
// aliases so commands don't need to import pkg/core for them.
package config

import (
	"maps"
	"slices"

	sharedcfg "github.com/leapstack-labs/tiersql/internal/config"
	"github.com/leapstack-labs/tiersql/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	SchemaFile   string               `koanf:"schema_file"`
	StatePath    string               `koanf:"state_path"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Target       *TargetConfig        `koanf:"target"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`

	// baseTarget is the target before environment overrides.
	baseTarget *TargetConfig
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	SchemaFile string        `koanf:"schema_file"`
	Target     *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultSchemaFile = sharedcfg.DefaultSchemaFile
	DefaultStateFile  = sharedcfg.DefaultStateFile
	DefaultEnv        = "dev"
	DefaultOutput     = "auto" // Auto-detect: TTY=table, non-TTY=markdown
)

// EnvironmentNames returns the configured environment names, sorted.
func (c *Config) EnvironmentNames() []string {
	return slices.Sorted(maps.Keys(c.Environments))
}

// TargetFor returns the base target merged with the named environment's
// overrides, with defaults applied and file database paths resolved against
// the project root. Unknown environments yield the base target.
func (c *Config) TargetFor(env string) *TargetConfig {
	base := c.baseTarget
	if base == nil {
		base = c.Target
	}
	if base == nil {
		base = &TargetConfig{Type: sharedcfg.DefaultEngine}
	}

	var override *TargetConfig
	if e, ok := c.Environments[env]; ok {
		override = e.Target
	}
	merged := MergeTargetConfig(base, override)
	if merged.Type == "" {
		merged.Type = sharedcfg.DefaultEngine
	}
	sharedcfg.ApplyTargetDefaults(merged)
	expandTargetEnvVars(merged)

	if isFileEngine(merged.Type) && merged.Database != "" && merged.Database != ":memory:" && c.ProjectRoot != "" {
		merged.Database = resolvePathRelativeTo(merged.Database, c.ProjectRoot)
	}
	return merged
}
