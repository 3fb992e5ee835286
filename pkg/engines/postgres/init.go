// Package postgres provides the PostgreSQL engine for tiersql.
//
// This file registers the engine with the engine registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/tiersql/pkg/engines/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/engine"
)

func init() {
	engine.Register("postgres", func(l *slog.Logger) core.Engine { return New(l) })
}
