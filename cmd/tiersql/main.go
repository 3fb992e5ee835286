// Command tiersql derives storage names for tiered relations and manages
// sessions to the databases that hold them.
package main

import (
	"os"

	"github.com/leapstack-labs/tiersql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
