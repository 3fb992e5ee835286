// Package core defines the shared language of the tiersql system.
//
// This package contains:
//   - Domain enums (Tier, DataType)
//   - Service interfaces (Engine, Handle, Result)
//   - Configuration types (ConnectionConfig, TargetConfig)
//   - The error taxonomy shared by naming, hierarchy and session code
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
