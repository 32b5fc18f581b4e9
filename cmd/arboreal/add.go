package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yob/arboreal/types"
)

var (
	addParent string
	addType   string
)

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a node",
	Long:  "Create a node with the given name, as a root or under --parent.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, store, err := openHierarchy()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		node, err := h.CreateNode(types.Attrs{Name: args[0], Type: addType}, addParent)
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", node.Name, node.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addParent, "parent", "p", "", "id of the parent node (omit for a root)")
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "optional type tag")
}
