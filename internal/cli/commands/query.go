package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/tiersql/internal/cli/output"
	"github.com/leapstack-labs/tiersql/pkg/results"
	"github.com/leapstack-labs/tiersql/pkg/session"
	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run raw SQL against the target database",
		Long: `Open a session to the target database and run SQL through it.

The statement is sent as-is; tiersql does not parse or rewrite it. When
invoked without SQL and stdin is a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  tiersql query "SELECT * FROM animal"

  # Output as JSON
  tiersql query "SELECT * FROM \"#species\"" --format json

  # Read SQL from a file or a pipe
  tiersql query -i report.sql
  echo "SELECT 1" | tiersql query

  # Interactive mode
  tiersql query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContext(cmd)

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !output.IsTerminal(cmd.InOrStdin()):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return cmdCtx.WithSession(cmd.Context(), cmdCtx.Cfg.Target, func(ctx context.Context, s *session.Session) error {
			return runQueryREPL(ctx, cmd, cmdCtx, s, opts)
		})
	}

	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return fmt.Errorf("no SQL given")
	}

	return cmdCtx.WithSession(cmd.Context(), cmdCtx.Cfg.Target, func(ctx context.Context, s *session.Session) error {
		return executeAndRender(ctx, cmd.OutOrStdout(), s, sqlQuery, opts.Format)
	})
}

func executeAndRender(ctx context.Context, w io.Writer, s *session.Session, sqlQuery, format string) error {
	res, err := s.RawQuery(ctx, sqlQuery)
	if err != nil {
		return err
	}
	rows, err := results.Collect(res)
	if err != nil {
		return fmt.Errorf("failed to read results: %w", err)
	}
	return renderResults(w, rows, format)
}
