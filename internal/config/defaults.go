// Package config holds configuration defaults and validation shared by the
// CLI and library callers. It is decoupled from flag and file handling.
package config

import (
	"strings"

	"github.com/leapstack-labs/tiersql/pkg/core"
)

// Default configuration values.
const (
	DefaultSchemaFile = "schema.yaml"
	DefaultStateFile  = ".tiersql/catalog.db"
	DefaultEngine     = "sqlite"
)

// ConfigFileNames are the project config file names, in lookup order.
var ConfigFileNames = []string{"tiersql.yaml", "tiersql.yml"}

var defaultPorts = map[string]int{
	"postgres": 5432,
	"mysql":    3306,
}

// ApplyDefaults applies default values to a ProjectConfig.
func ApplyDefaults(c *core.ProjectConfig) {
	if c == nil {
		return
	}
	if c.SchemaFile == "" {
		c.SchemaFile = DefaultSchemaFile
	}
	if c.Target == nil {
		c.Target = &core.TargetConfig{Type: DefaultEngine}
	}
	ApplyTargetDefaults(c.Target)
}

// ApplyTargetDefaults normalizes the engine type and fills in the default
// port of network engines.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}
	t.Type = strings.ToLower(strings.TrimSpace(t.Type))
	if t.Port == 0 {
		t.Port = defaultPorts[t.Type]
	}
}
