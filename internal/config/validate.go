package config

import (
	"fmt"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/engine"
)

// ValidateTarget checks that a target names a registered engine and carries
// the fields that engine cannot do without.
// The engine registry is the single source of truth for available types.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target is required")
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !engine.IsRegistered(t.Type) {
		return &engine.UnknownEngineError{
			Type:      t.Type,
			Available: engine.ListEngines(),
		}
	}
	if t.Port < 0 || t.Port > 65535 {
		return fmt.Errorf("target port %d out of range", t.Port)
	}
	if t.Type == "postgres" && t.Database == "" {
		return fmt.Errorf("postgres target requires a database")
	}
	return nil
}
