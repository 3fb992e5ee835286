package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/tiersql/pkg/engine"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display tiersql version and the engines compiled into this binary.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tiersql v%s\n", version)
			if engines := engine.ListEngines(); len(engines) > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Engines: %s\n", strings.Join(engines, ", "))
			}
		},
	}
}
