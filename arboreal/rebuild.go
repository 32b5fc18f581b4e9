package arboreal

import (
	"fmt"

	"github.com/yob/arboreal/types"
)

// RebuildAll reconstructs every node's cached path from raw parent
// links alone, ignoring whatever the path column currently holds. It is
// the recovery entry point after corruption or bulk import, and is
// idempotent.
//
// Nodes are processed strictly after their parent: the frontier starts
// at the roots and grows level by level, so each node's path is the
// parent's freshly assigned chain plus the parent's id. A node whose
// parent chain never reaches a root (a cycle in the stored links, or a
// parent id that resolves to nothing) is reported per node and left
// untouched; one corrupt subtree must not block repair of the rest.
func (h *Hierarchy) RebuildAll() (types.RebuildReport, error) {
	var report types.RebuildReport

	tx, err := h.store.Begin(true)
	if err != nil {
		return report, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	nodes, err := tx.Query(types.Filter{})
	if err != nil {
		return report, fmt.Errorf("query all: %w", err)
	}

	// Bulk imports bypass the create-time id check, and an id holding
	// the delimiter would encode ambiguous segments into every
	// descendant's path. Such nodes are reported and excluded from the
	// walk, which strands their subtrees with them.
	invalid := make(map[string]bool)
	for _, n := range nodes {
		if err := h.codec.checkID(n.ID); err != nil {
			invalid[n.ID] = true
			report.Errors = append(report.Errors, types.NodeError{
				NodeID: n.ID,
				Reason: fmt.Sprintf("id contains the delimiter %q", h.cfg.Delimiter),
			})
		}
	}

	byID := make(map[string]*types.Node, len(nodes))
	children := make(map[string][]*types.Node, len(nodes))
	var frontier []*types.Node
	for _, n := range nodes {
		byID[n.ID] = n
		if invalid[n.ID] {
			continue
		}
		if n.ParentID == "" {
			frontier = append(frontier, n)
		} else {
			children[n.ParentID] = append(children[n.ParentID], n)
		}
	}

	// Fresh chains, keyed by id, assigned as the frontier advances.
	chains := make(map[string][]string, len(nodes))

	for len(frontier) > 0 {
		var next []*types.Node
		for _, n := range frontier {
			var chain []string
			if n.ParentID != "" {
				parentChain := chains[n.ParentID]
				chain = make([]string, 0, len(parentChain)+1)
				chain = append(chain, parentChain...)
				chain = append(chain, n.ParentID)
			}
			chains[n.ID] = chain

			if fresh := h.codec.Encode(chain); fresh != n.Path {
				n.Path = fresh
				if err := tx.Update(n); err != nil {
					return report, fmt.Errorf("update %s: %w", n.ID, err)
				}
			}
			report.Processed++
			next = append(next, children[n.ID]...)
		}
		frontier = next
	}

	// Anything not reached from a root sits under a dangling parent,
	// inside a parent-link cycle, or beneath a node with an unusable id.
	for _, n := range nodes {
		if _, ok := chains[n.ID]; ok {
			continue
		}
		if invalid[n.ID] {
			continue
		}
		report.Errors = append(report.Errors, types.NodeError{
			NodeID: n.ID,
			Reason: diagnose(n, byID, invalid),
		})
	}

	if err := tx.Commit(); err != nil {
		return report, err
	}
	h.log.Info("rebuild finished",
		"processed", report.Processed, "errors", len(report.Errors))
	return report, nil
}

// diagnose explains why a node could not be rebuilt by walking its raw
// parent links: the chain dead-ends at a missing id, passes through a
// node whose own id could not be rebuilt, or revisits a node and is
// therefore a cycle.
func diagnose(n *types.Node, byID map[string]*types.Node, invalid map[string]bool) string {
	seen := map[string]bool{n.ID: true}
	cur := n
	for {
		parent, exists := byID[cur.ParentID]
		if !exists {
			if cur.ID == n.ID {
				return fmt.Sprintf("parent %s does not exist", cur.ParentID)
			}
			return fmt.Sprintf("ancestor %s references missing parent %s", cur.ID, cur.ParentID)
		}
		if invalid[parent.ID] {
			return fmt.Sprintf("ancestor %s has an id containing the delimiter", parent.ID)
		}
		if seen[parent.ID] {
			return "parent links form a cycle"
		}
		seen[parent.ID] = true
		cur = parent
	}
}
