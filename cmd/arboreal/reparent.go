package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yob/arboreal/types"
)

var reparentToRoot bool

var reparentCmd = &cobra.Command{
	Use:   "reparent NODE [NEW_PARENT]",
	Short: "Move a node and its subtree",
	Long: "Move a node (with its whole subtree) under a new parent, " +
		"or to the root set with --to-root. The engine rejects moves " +
		"that would make a node its own ancestor.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		newParent := ""
		if len(args) == 2 {
			newParent = args[1]
		}
		if newParent == "" && !reparentToRoot {
			return fmt.Errorf("name a new parent or pass --to-root")
		}

		h, store, err := openHierarchy()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := h.Reparent(args[0], newParent); err != nil {
			if errors.Is(err, types.ErrConflict) {
				return fmt.Errorf("%w (retry the operation)", err)
			}
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	reparentCmd.Flags().BoolVar(&reparentToRoot, "to-root", false, "make the node a root")
}
