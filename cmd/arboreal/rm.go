package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCascade bool

var rmCmd = &cobra.Command{
	Use:   "rm NODE",
	Short: "Delete a node",
	Long: "Delete a node. Without --cascade the command refuses to " +
		"orphan descendants; with it the whole subtree goes.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, store, err := openHierarchy()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := h.Delete(args[0], rmCascade); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVar(&rmCascade, "cascade", false, "delete the node's descendants too")
}
