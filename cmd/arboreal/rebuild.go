package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild all cached paths from parent links",
	Long: "Reconstruct every node's cached path from its raw parent " +
		"link, overwriting whatever is stored. Use after corruption or " +
		"a bulk import. Nodes whose parent links cannot reach a root " +
		"are reported and left untouched.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, store, err := openHierarchy()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		report, err := h.RebuildAll()
		if err != nil {
			return err
		}

		fmt.Printf("rebuilt %d nodes\n", report.Processed)
		if !report.OK() {
			fmt.Fprintf(os.Stderr, "%d nodes could not be rebuilt:\n", len(report.Errors))
			for _, e := range report.Errors {
				fmt.Fprintf(os.Stderr, "  %s\n", e)
			}
			return fmt.Errorf("rebuild left %d nodes unrepaired", len(report.Errors))
		}
		return nil
	},
}
