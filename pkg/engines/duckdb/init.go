// Package duckdb provides the DuckDB engine for tiersql.
//
// This file registers the engine with the engine registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/tiersql/pkg/engines/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/engine"
)

func init() {
	engine.Register("duckdb", func(l *slog.Logger) core.Engine { return New(l) })
}
