package commands

import (
	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/relation"
	"github.com/spf13/cobra"
)

// NamesOptions holds options for the names command.
type NamesOptions struct {
	Tier string
}

// NewNamesCommand creates the names command.
func NewNamesCommand() *cobra.Command {
	opts := &NamesOptions{}

	cmd := &cobra.Command{
		Use:   "names",
		Short: "Derive storage names for the schema's relations",
		Long: `Load the schema file, bind part relations to their masters and print
the table name and database-qualified name each relation is stored under.`,
		Example: `  # All relations
  tiersql names

  # Only computed relations, as JSON
  tiersql names --tier computed -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNames(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Tier, "tier", "", "Only show relations of this tier")
	_ = cmd.RegisterFlagCompletionFunc("tier", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, 5)
		for _, t := range core.AllTiers() {
			names = append(names, t.String())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runNames(cmd *cobra.Command, opts *NamesOptions) error {
	cmdCtx := NewCommandContext(cmd)

	schema, reg, err := cmdCtx.LoadSchema()
	if err != nil {
		return err
	}

	rels := reg.All()
	if opts.Tier != "" {
		tier, err := core.ParseTier(opts.Tier)
		if err != nil {
			return err
		}
		filtered := make([]*relation.Relation, 0, len(rels))
		for _, rel := range rels {
			if rel.Tier() == tier {
				filtered = append(filtered, rel)
			}
		}
		rels = filtered
	}

	return renderRelations(cmdCtx.Renderer, schema.Database, rels)
}
