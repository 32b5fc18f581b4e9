package types

import "fmt"

// NodeError reports a single node the rebuild could not repair.
type NodeError struct {
	NodeID string
	Reason string
}

func (e NodeError) String() string {
	return fmt.Sprintf("%s: %s", e.NodeID, e.Reason)
}

// RebuildReport summarizes a full path rebuild. Errors lists nodes whose
// raw parent links could not be resolved to a root (cycles, dangling
// parents); those nodes keep their previous path values.
type RebuildReport struct {
	Processed int
	Errors    []NodeError
}

// OK reports whether every node was rebuilt.
func (r RebuildReport) OK() bool {
	return len(r.Errors) == 0
}

// Stats holds cheap derived metrics about a hierarchy.
type Stats struct {
	Nodes    int
	Roots    int
	MaxDepth int
}
