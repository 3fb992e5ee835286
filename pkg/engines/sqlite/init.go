// Package sqlite provides the SQLite engine for tiersql.
//
// This file registers the engine with the engine registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/tiersql/pkg/engines/sqlite"
package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/engine"
)

func init() {
	engine.Register("sqlite", func(l *slog.Logger) core.Engine { return New(l) })
}
