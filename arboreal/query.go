package arboreal

import (
	"fmt"

	"github.com/yob/arboreal/types"
)

// Get returns a single node by id.
func (h *Hierarchy) Get(id string) (*types.Node, error) {
	tx, err := h.store.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return tx.Get(id)
}

// Parent returns the node's parent, or nil for a root.
func (h *Hierarchy) Parent(id string) (*types.Node, error) {
	tx, err := h.store.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	node, err := tx.Get(id)
	if err != nil {
		return nil, err
	}
	if node.ParentID == "" {
		return nil, nil
	}
	return tx.Get(node.ParentID)
}

// Children returns all nodes whose parent reference is the given id.
func (h *Hierarchy) Children(id string) ([]*types.Node, error) {
	tx, err := h.store.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Get(id); err != nil {
		return nil, err
	}
	return tx.Query(types.Filter{ParentID: &id})
}

// Siblings returns the nodes sharing the node's parent, excluding the
// node itself. For a root the result is empty unless the engine is
// configured with RootsAreSiblings, in which case all other roots
// qualify (they share the same absent parent).
func (h *Hierarchy) Siblings(id string) ([]*types.Node, error) {
	tx, err := h.store.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	node, err := tx.Get(id)
	if err != nil {
		return nil, err
	}
	if node.ParentID == "" && !h.cfg.RootsAreSiblings {
		return nil, nil
	}
	peers, err := tx.Query(types.Filter{ParentID: &node.ParentID})
	if err != nil {
		return nil, err
	}
	siblings := peers[:0]
	for _, p := range peers {
		if p.ID != node.ID {
			siblings = append(siblings, p)
		}
	}
	return siblings, nil
}

// Ancestors returns the node's strict ancestors, root-first, resolved
// from its cached path by an ordered store lookup. An ancestor id that
// resolves to no node aborts with ErrNotFound: a dangling chain is
// corruption, not an empty answer.
func (h *Hierarchy) Ancestors(id string) ([]*types.Node, error) {
	tx, err := h.store.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	node, err := tx.Get(id)
	if err != nil {
		return nil, err
	}
	chain, err := h.codec.Decode(node.Path)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, nil
	}
	ancestors, err := tx.Query(types.Filter{IDs: chain})
	if err != nil {
		return nil, err
	}
	if len(ancestors) != len(chain) {
		return nil, fmt.Errorf("%w: ancestor chain of %s names %d nodes, found %d",
			types.ErrNotFound, id, len(chain), len(ancestors))
	}
	return ancestors, nil
}

// Descendants returns every node that carries the given node among its
// encoded ancestors, via a prefix match on the cached paths. The node
// itself is excluded.
func (h *Hierarchy) Descendants(id string) ([]*types.Node, error) {
	tx, err := h.store.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return h.descendants(tx, id)
}

func (h *Hierarchy) descendants(tx types.Tx, id string) ([]*types.Node, error) {
	node, err := tx.Get(id)
	if err != nil {
		return nil, err
	}
	chain, err := h.codec.Decode(node.Path)
	if err != nil {
		return nil, err
	}
	return tx.Query(types.Filter{PathPrefix: h.codec.childPrefix(chain, node.ID)})
}

// Subtree returns the node together with all of its descendants.
func (h *Hierarchy) Subtree(id string) ([]*types.Node, error) {
	tx, err := h.store.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	node, err := tx.Get(id)
	if err != nil {
		return nil, err
	}
	descendants, err := h.descendants(tx, id)
	if err != nil {
		return nil, err
	}
	return append([]*types.Node{node}, descendants...), nil
}

// Roots returns all nodes whose path encodes the empty ancestor chain.
func (h *Hierarchy) Roots() ([]*types.Node, error) {
	tx, err := h.store.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return tx.Query(types.Filter{PathExact: h.codec.root()})
}
