package arboreal

import (
	"fmt"
	"strings"

	"github.com/yob/arboreal/types"
)

// Reparent moves a node (and therefore its whole subtree) under a new
// parent, or to the root set when newParentID is empty. Validation, the
// node's own path update and the rewrite of every descendant's cached
// path happen in one store transaction: readers observe either the old
// tree or the new one, never a partially cascaded state.
//
// The cascade is write-amplified on purpose: every descendant's path is
// rewritten so reads stay prefix-filter cheap.
func (h *Hierarchy) Reparent(nodeID, newParentID string) error {
	tx, err := h.store.Begin(true)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	node, err := tx.Get(nodeID)
	if err != nil {
		return err
	}

	parent, err := validateParent(tx, h.codec, nodeID, newParentID)
	if err != nil {
		return err
	}

	oldChain, err := h.codec.Decode(node.Path)
	if err != nil {
		return err
	}

	newPath := h.codec.root()
	if parent != nil {
		parentChain, err := h.codec.Decode(parent.Path)
		if err != nil {
			return err
		}
		newPath = h.codec.childPrefix(parentChain, parent.ID)
	}

	// Descendants are found by the node's old path before it changes.
	oldPrefix := h.codec.childPrefix(oldChain, node.ID)
	newChain, err := h.codec.Decode(newPath)
	if err != nil {
		return err
	}
	newPrefix := h.codec.childPrefix(newChain, node.ID)

	descendants, err := tx.Query(types.Filter{PathPrefix: oldPrefix})
	if err != nil {
		return fmt.Errorf("query descendants: %w", err)
	}

	node.ParentID = newParentID
	node.Path = newPath
	if err := tx.Update(node); err != nil {
		return fmt.Errorf("update %s: %w", node.ID, err)
	}

	for _, d := range descendants {
		// The old prefix is replaced wholesale; the remainder of the
		// descendant's chain below the moved node is untouched.
		d.Path = newPrefix + strings.TrimPrefix(d.Path, oldPrefix)
		if err := tx.Update(d); err != nil {
			return fmt.Errorf("update descendant %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	h.log.Debug("node reparented",
		"id", nodeID, "parent", newParentID, "cascaded", len(descendants))
	return nil
}
