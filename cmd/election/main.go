// Command election registers voters, issues and counts ballots, and reports
// results against the configured store.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "election",
	Short:         "Run election operations against the configured store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), commandName(cmd))
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// commandName is the subcommand path below the root, e.g. "candidate_add".
func commandName(cmd *cobra.Command) string {
	path := strings.Fields(cmd.CommandPath())
	if len(path) > 1 {
		path = path[1:]
	}
	return strings.Join(path, "_")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_ = closeApp()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
