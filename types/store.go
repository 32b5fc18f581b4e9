package types

// Filter selects nodes in a Query call. Zero value matches every node.
// Fields combine with AND.
type Filter struct {
	// ParentID filters on exact parent reference. A pointer to the
	// empty string selects roots; nil disables the filter.
	ParentID *string

	// PathPrefix selects nodes whose cached path starts with the given
	// string. The engine always passes a delimiter-terminated prefix,
	// so matches are exact-token by construction.
	PathPrefix string

	// PathExact selects nodes whose cached path equals the given string.
	PathExact string

	// IDs selects nodes by identifier. Results are returned in the
	// order the identifiers are listed; identifiers with no matching
	// node are skipped.
	IDs []string
}

// Tx is a single store transaction. Writable transactions group every
// create/update/delete into one atomic unit: either Commit makes them
// all visible together, or Rollback (or a failed Commit) discards them
// all. Read-only transactions see a consistent snapshot.
type Tx interface {
	// Create persists a new node, assigning its ID. The assigned ID is
	// written back into n.
	Create(n *Node) error

	// Get returns the node with the given id, or ErrNotFound.
	Get(id string) (*Node, error)

	// Update replaces the stored node with the same ID as n.
	Update(n *Node) error

	// Delete removes the node with the given id, or returns ErrNotFound.
	Delete(id string) error

	// Query returns all nodes matching the filter. See Filter for the
	// ordering contract of the IDs field; otherwise order is the
	// store's natural order.
	Query(f Filter) ([]*Node, error)

	// Commit makes the transaction's writes visible atomically. A
	// snapshot invalidated by a concurrent writer surfaces ErrConflict
	// and leaves the store untouched.
	Commit() error

	// Rollback discards the transaction. Safe to call after Commit.
	Rollback() error
}

// Store is the backing store contract the engine is written against.
// Writable transactions must provide serializable-or-equivalent
// isolation: two overlapping cascades must not both commit against a
// stale snapshot of the overlapping part.
type Store interface {
	Begin(writable bool) (Tx, error)
	Close() error
}
