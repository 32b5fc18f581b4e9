package types

import "time"

// Node is one record participating in the hierarchy.
type Node struct {
	// ID is the stable identifier assigned by the store on creation.
	// It is opaque to the engine and never reused.
	ID string `json:"id"`

	// ParentID references another node's ID, or is empty for a root.
	ParentID string `json:"parent_id,omitempty"`

	// Path caches the node's strict-ancestor chain, root-first, in the
	// delimited form produced by the path codec (e.g. "/a/b/" for a node
	// whose grandparent is a and parent is b; "/" for a root).
	Path string `json:"path"`

	// Type is an optional discriminator so heterogeneous kinds can share
	// one hierarchy. It never affects path computation, validation or
	// query results.
	Type string `json:"type,omitempty"`

	// Name is an optional human-readable label. The engine stores it
	// untouched.
	Name string `json:"name,omitempty"`

	// Data holds arbitrary caller attributes the engine carries along.
	Data map[string]string `json:"data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// Clone returns a deep copy of the node. Stores hand out clones so
// callers can never mutate persisted state through a returned pointer.
func (n *Node) Clone() *Node {
	c := *n
	if n.Data != nil {
		c.Data = make(map[string]string, len(n.Data))
		for k, v := range n.Data {
			c.Data[k] = v
		}
	}
	return &c
}

// Attrs carries the caller-supplied fields for node creation.
type Attrs struct {
	Type string
	Name string
	Data map[string]string
}
