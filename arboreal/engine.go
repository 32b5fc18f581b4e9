// Package arboreal maintains tree-shaped relationships among records in
// a backing store using a materialized path encoding: every node caches
// its ancestor chain as a delimited string, so ancestor, descendant,
// subtree, sibling and root queries run as plain store filters instead
// of recursive traversals. Reparenting rewrites the cached paths of the
// node and all of its descendants inside one store transaction, and a
// rebuild entry point reconstructs every path from raw parent links.
package arboreal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/yob/arboreal/types"
)

// Hierarchy is the engine. It holds no node state of its own; every
// operation opens a transaction against the backing store.
type Hierarchy struct {
	store types.Store
	cfg   types.Config
	codec codec
	log   *slog.Logger
}

// New creates a hierarchy engine over the given store.
func New(store types.Store, cfg types.Config) (*Hierarchy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hierarchy{
		store: store,
		cfg:   cfg,
		codec: newCodec(cfg.Delimiter),
		log:   logger,
	}, nil
}

// CreateNode persists a new node under the given parent, or as a root
// when parentID is empty. The node's path is computed from the parent's
// current path inside the same transaction that creates it.
func (h *Hierarchy) CreateNode(attrs types.Attrs, parentID string) (*types.Node, error) {
	tx, err := h.store.Begin(true)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	path := h.codec.root()
	if parentID != "" {
		if err := h.codec.checkID(parentID); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidParent, err)
		}
		parent, err := tx.Get(parentID)
		if err != nil {
			// Only a missing parent is a validation failure; store
			// errors (conflicts included) keep their own kind so
			// callers can still retry on ErrConflict.
			if errors.Is(err, types.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent %s does not exist", types.ErrInvalidParent, parentID)
			}
			return nil, err
		}
		chain, err := h.codec.Decode(parent.Path)
		if err != nil {
			return nil, err
		}
		path = h.codec.childPrefix(chain, parent.ID)
	}

	node := &types.Node{
		ParentID: parentID,
		Path:     path,
		Type:     attrs.Type,
		Name:     attrs.Name,
		Data:     attrs.Data,
	}
	if err := tx.Create(node); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	if err := h.codec.checkID(node.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	h.log.Debug("node created", "id", node.ID, "parent", parentID, "path", node.Path)
	return node, nil
}

// Delete removes a node. With cascade the whole subtree goes; without
// it, a node that still has children fails with ErrHasChildren so
// descendants are never orphaned.
func (h *Hierarchy) Delete(id string, cascade bool) error {
	tx, err := h.store.Begin(true)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	node, err := tx.Get(id)
	if err != nil {
		return err
	}

	chain, err := h.codec.Decode(node.Path)
	if err != nil {
		return err
	}
	descendants, err := tx.Query(types.Filter{PathPrefix: h.codec.childPrefix(chain, node.ID)})
	if err != nil {
		return fmt.Errorf("query descendants: %w", err)
	}
	if !cascade && len(descendants) > 0 {
		return fmt.Errorf("%w: %s has %d descendants", types.ErrHasChildren, id, len(descendants))
	}
	for _, d := range descendants {
		if err := tx.Delete(d.ID); err != nil {
			return fmt.Errorf("delete descendant %s: %w", d.ID, err)
		}
	}
	if err := tx.Delete(node.ID); err != nil {
		return fmt.Errorf("delete %s: %w", node.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	h.log.Debug("node deleted", "id", id, "cascade", cascade, "descendants", len(descendants))
	return nil
}

// Stats reports node and root counts plus the maximum depth observed.
func (h *Hierarchy) Stats() (types.Stats, error) {
	tx, err := h.store.Begin(false)
	if err != nil {
		return types.Stats{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	nodes, err := tx.Query(types.Filter{})
	if err != nil {
		return types.Stats{}, err
	}
	var stats types.Stats
	stats.Nodes = len(nodes)
	for _, n := range nodes {
		chain, err := h.codec.Decode(n.Path)
		if err != nil {
			return types.Stats{}, err
		}
		if len(chain) == 0 {
			stats.Roots++
		}
		if depth := len(chain) + 1; depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
	}
	return stats, nil
}
