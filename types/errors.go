package types

import "errors"

// Sentinel errors returned by the engine and its stores. Callers should
// test with errors.Is; all errors carry context via wrapping.
var (
	// ErrInvalidParent is returned when a create or reparent names a
	// parent that would break the tree: the node itself, one of its
	// descendants, or a node that does not exist.
	ErrInvalidParent = errors.New("invalid parent")

	// ErrMalformedPath is returned when a stored path cannot be decoded.
	// A malformed path is never silently treated as "no ancestors".
	ErrMalformedPath = errors.New("malformed path")

	// ErrConflict is returned when a concurrent structural change
	// invalidated a transaction's snapshot. The operation was rolled
	// back; the caller may retry against a fresh snapshot.
	ErrConflict = errors.New("transaction conflict")

	// ErrNotFound is returned when a referenced node does not exist.
	ErrNotFound = errors.New("node not found")

	// ErrHasChildren is returned by a non-cascading delete of a node
	// that still has children.
	ErrHasChildren = errors.New("node has children")

	// ErrInvalidID is returned when a caller-supplied identifier
	// contains the path delimiter.
	ErrInvalidID = errors.New("identifier contains delimiter")
)
