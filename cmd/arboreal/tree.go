package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yob/arboreal/arboreal"
	"github.com/yob/arboreal/types"
)

var treeCmd = &cobra.Command{
	Use:   "tree [NODE]",
	Short: "Print the hierarchy",
	Long:  "Print the whole hierarchy, or the subtree under the given node.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, store, err := openHierarchy()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		var tops []*types.Node
		if len(args) == 1 {
			top, err := h.Get(args[0])
			if err != nil {
				return err
			}
			tops = []*types.Node{top}
		} else {
			tops, err = h.Roots()
			if err != nil {
				return err
			}
			sortByName(tops)
		}

		for _, top := range tops {
			if err := printSubtree(h, top, 0); err != nil {
				return err
			}
		}

		stats, err := h.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("\n%d nodes, %d roots, max depth %d\n", stats.Nodes, stats.Roots, stats.MaxDepth)
		return nil
	},
}

func printSubtree(h *arboreal.Hierarchy, node *types.Node, depth int) error {
	label := node.Name
	if label == "" {
		label = node.ID
	}
	if node.Type != "" {
		label += " [" + node.Type + "]"
	}
	fmt.Printf("%s%s (%s)\n", strings.Repeat("  ", depth), label, node.ID)

	children, err := h.Children(node.ID)
	if err != nil {
		return err
	}
	sortByName(children)
	for _, child := range children {
		if err := printSubtree(h, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func sortByName(nodes []*types.Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
}
