package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/tiersql/internal/cli/config"
	"github.com/leapstack-labs/tiersql/pkg/results"
	"github.com/leapstack-labs/tiersql/pkg/session"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List and classify the tables of the target database",
		Long: `Connect to the target database, list its tables and classify each by
tier. With a schema file, tables are matched to declared relations:

  declared    owned by a relation in the schema
  undeclared  a valid storage name no relation owns
  foreign     not a storage name
  missing     declared relation with no table`,
		Args: cobra.NoArgs,
		RunE: runTables,
	}
}

func runTables(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)

	reg, err := cmdCtx.OptionalSchema()
	if err != nil {
		return err
	}

	var tables []string
	err = cmdCtx.WithSession(cmd.Context(), cmdCtx.Cfg.Target, func(ctx context.Context, s *session.Session) error {
		var err error
		tables, err = listTableNames(ctx, s, cmdCtx.Cfg.Target)
		return err
	})
	if err != nil {
		return err
	}

	known, unmanaged := reg.ResolveTables(tables)
	cmdCtx.Logger.Debug("tables resolved",
		slog.Int("declared", len(known)),
		slog.Int("unmanaged", len(unmanaged)))
	return renderClassifications(cmdCtx.Renderer, classifyTables(reg, tables), true)
}

// tableListQuery returns the catalog query listing base tables for an engine.
func tableListQuery(target *config.TargetConfig) (string, error) {
	switch target.Type {
	case "sqlite":
		return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`, nil
	case "duckdb", "postgres":
		return `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name`, nil
	case "mysql":
		return `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name`, nil
	default:
		return "", fmt.Errorf("listing tables is not supported for engine %q", target.Type)
	}
}

func listTableNames(ctx context.Context, s *session.Session, target *config.TargetConfig) ([]string, error) {
	query, err := tableListQuery(target)
	if err != nil {
		return nil, err
	}

	res, err := s.RawQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := results.Collect(res)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		v, _ := row.ValueAt(0)
		names = append(names, formatValue(v))
	}
	return names, nil
}
