package arboreal

import (
	"errors"
	"fmt"

	"github.com/yob/arboreal/types"
)

// validateParent decides whether assigning newParentID to nodeID is
// structurally legal, using the transaction's snapshot of the proposed
// parent's path. It returns the resolved parent node (nil when the node
// is becoming a root).
//
// The cycle check is a structured decode of the parent's ancestor chain
// plus the parent itself, then exact-token membership: substring search
// against the raw path would let id "12" match inside id "123".
func validateParent(tx types.Tx, c codec, nodeID, newParentID string) (*types.Node, error) {
	if newParentID == "" {
		return nil, nil
	}
	if newParentID == nodeID {
		return nil, fmt.Errorf("%w: node %s cannot be its own parent", types.ErrInvalidParent, nodeID)
	}

	parent, err := tx.Get(newParentID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: parent %s does not exist", types.ErrInvalidParent, newParentID)
		}
		return nil, err
	}

	chain, err := c.Decode(parent.Path)
	if err != nil {
		return nil, err
	}
	for _, ancestorID := range append(chain, parent.ID) {
		if ancestorID == nodeID {
			return nil, fmt.Errorf("%w: %s is a descendant of %s", types.ErrInvalidParent, newParentID, nodeID)
		}
	}
	return parent, nil
}
