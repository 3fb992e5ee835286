package commands

import (
	"fmt"

	"github.com/leapstack-labs/tiersql/internal/registry"
	"github.com/spf13/cobra"
)

// NewClassifyCommand creates the classify command.
func NewClassifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <table>...",
		Short: "Classify storage names by tier",
		Long: `Determine the tier of each storage name from its prefix. Part names are
split into their master table and part segment. When a schema file is
present, names owned by a declared relation are attributed to it.`,
		Example: `  tiersql classify animal '#species' __spike_sorting animal__session`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runClassify,
	}
}

func runClassify(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)

	reg, err := cmdCtx.OptionalSchema()
	if err != nil {
		return err
	}

	var invalid int
	infos := make([]classificationInfo, 0, len(args))
	for _, name := range args {
		c, rel, err := reg.Classify(name)
		if err != nil {
			invalid++
		}
		infos = append(infos, newClassificationInfo(name, c, rel, err))
	}

	if err := renderClassifications(cmdCtx.Renderer, infos, false); err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d names match no tier", invalid, len(args))
	}
	return nil
}

// classifyTables classifies table names found in a database against reg.
func classifyTables(reg *registry.RelationRegistry, tables []string) []classificationInfo {
	infos := make([]classificationInfo, 0, len(tables))
	for _, name := range tables {
		c, rel, err := reg.Classify(name)
		info := newClassificationInfo(name, c, rel, err)
		switch {
		case err != nil:
			info.Status = "foreign"
		case rel != nil:
			info.Status = "declared"
		default:
			info.Status = "undeclared"
		}
		infos = append(infos, info)
	}

	// declared relations with no table
	seen := make(map[string]struct{}, len(tables))
	for _, name := range tables {
		if rel, ok := reg.Resolve(name); ok {
			seen[rel.Identifier()] = struct{}{}
		}
	}
	for _, rel := range reg.All() {
		if _, ok := seen[rel.Identifier()]; ok {
			continue
		}
		// registered relations always resolve
		name, _ := rel.TableName()
		c, _, err := reg.Classify(name)
		info := newClassificationInfo(name, c, rel, err)
		info.Status = "missing"
		infos = append(infos, info)
	}
	return infos
}
