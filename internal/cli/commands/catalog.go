package commands

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/tiersql/internal/cli/output"
	"github.com/leapstack-labs/tiersql/internal/state"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("schema file declares no database")

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Track derived table names across runs",
		Long: `The catalog records the table name derived for every relation so that
renames caused by schema edits (a changed tier, a new master, a renamed
identifier) are caught before they reach the database.`,
	}

	cmd.AddCommand(newCatalogSyncCommand())
	cmd.AddCommand(newCatalogCheckCommand())
	cmd.AddCommand(newCatalogListCommand())
	return cmd
}

func newCatalogSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Record the current derived names in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			schema, reg, err := cmdCtx.LoadSchema()
			if err != nil {
				return err
			}
			if schema.Database == "" {
				return errNoDatabase
			}

			store, err := state.Open(cmdCtx.Cfg.StatePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.RecordRelations(schema.Database, reg.All()); err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("recorded %d relations for %s", reg.Count(), schema.Database))
			return nil
		},
	}
}

func newCatalogCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report relations whose derived name differs from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			schema, reg, err := cmdCtx.LoadSchema()
			if err != nil {
				return err
			}
			if schema.Database == "" {
				return errNoDatabase
			}

			store, err := state.Open(cmdCtx.Cfg.StatePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			drift, err := store.Drift(schema.Database, reg.All())
			if err != nil {
				return err
			}
			if err := renderDrift(cmdCtx.Renderer, drift); err != nil {
				return err
			}
			if len(drift) > 0 {
				return fmt.Errorf("%d relations drifted from the catalog (run 'tiersql catalog sync' to accept)", len(drift))
			}
			return nil
		},
	}
}

func newCatalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the recorded relations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			schema, _, err := cmdCtx.LoadSchema()
			if err != nil {
				return err
			}

			store, err := state.Open(cmdCtx.Cfg.StatePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			recorded, err := store.ListRelations(schema.Database)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(recorded)
			}
			t := newTable(r, table.Row{"Relation", "Tier", "Table", "Master", "Recorded"})
			for _, rec := range recorded {
				t.AppendRow(table.Row{rec.Identifier, r.Styles().Tier(rec.Tier), rec.TableName, rec.Master, rec.RecordedAt.Format("2006-01-02 15:04:05")})
			}
			renderTableFor(r, t)
			return nil
		},
	}
}

func renderDrift(r *output.Renderer, drift []state.DriftEntry) error {
	if r.EffectiveMode() == output.ModeJSON {
		if drift == nil {
			drift = []state.DriftEntry{}
		}
		return r.JSON(drift)
	}
	if len(drift) == 0 {
		r.Success("catalog is up to date")
		return nil
	}

	styles := r.Styles()
	t := newTable(r, table.Row{"Relation", "Change", "Recorded", "Current"})
	for _, d := range drift {
		t.AppendRow(table.Row{d.Identifier, styles.Warning.Render(string(d.Kind)), d.Recorded, d.Current})
	}
	renderTableFor(r, t)
	return nil
}
