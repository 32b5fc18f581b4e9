package arboreal_test

import (
	"path/filepath"
	"testing"

	"github.com/yob/arboreal/arboreal"
	"github.com/yob/arboreal/arboreal/stores/jsonstore"
	"github.com/yob/arboreal/types"
)

// newHierarchy builds an engine over a fresh JSON file store.
func newHierarchy(t *testing.T, cfg types.Config) (*arboreal.Hierarchy, types.Store) {
	t.Helper()
	store, err := jsonstore.New(filepath.Join(t.TempDir(), "nodes.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	h, err := arboreal.New(store, cfg)
	if err != nil {
		t.Fatalf("failed to create hierarchy: %v", err)
	}
	return h, store
}

// geography is the shared fixture:
//
//	Australia
//	├── Victoria
//	│   └── Melbourne
//	└── NSW
//	    └── Sydney
type geography struct {
	Australia *types.Node
	Victoria  *types.Node
	Melbourne *types.Node
	NSW       *types.Node
	Sydney    *types.Node
}

func loadGeography(t *testing.T, h *arboreal.Hierarchy) *geography {
	t.Helper()
	g := &geography{}
	g.Australia = mustCreate(t, h, "Australia", "")
	g.Victoria = mustCreate(t, h, "Victoria", g.Australia.ID)
	g.Melbourne = mustCreate(t, h, "Melbourne", g.Victoria.ID)
	g.NSW = mustCreate(t, h, "NSW", g.Australia.ID)
	g.Sydney = mustCreate(t, h, "Sydney", g.NSW.ID)
	return g
}

func mustCreate(t *testing.T, h *arboreal.Hierarchy, name, parentID string) *types.Node {
	t.Helper()
	n, err := h.CreateNode(types.Attrs{Name: name}, parentID)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return n
}

func names(nodes []*types.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

// assertNames checks the result contains exactly the given names,
// ignoring order.
func assertNames(t *testing.T, nodes []*types.Node, want ...string) {
	t.Helper()
	if len(nodes) != len(want) {
		t.Fatalf("expected %d nodes %v, got %v", len(want), want, names(nodes))
	}
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		seen[n.Name] = true
	}
	for _, name := range want {
		if !seen[name] {
			t.Errorf("missing %q in %v", name, names(nodes))
		}
	}
}

// assertNamesInOrder checks both membership and order.
func assertNamesInOrder(t *testing.T, nodes []*types.Node, want ...string) {
	t.Helper()
	got := names(nodes)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// corruptAllPaths overwrites every stored path with garbage, bypassing
// the engine.
func corruptAllPaths(t *testing.T, store types.Store, garbage string) {
	t.Helper()
	tx, err := store.Begin(true)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	nodes, err := tx.Query(types.Filter{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	for _, n := range nodes {
		n.Path = garbage
		if err := tx.Update(n); err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
}

// setParentLink rewrites a raw parent reference, bypassing validation.
func setParentLink(t *testing.T, store types.Store, id, parentID string) {
	t.Helper()
	tx, err := store.Begin(true)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	n, err := tx.Get(id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	n.ParentID = parentID
	if err := tx.Update(n); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
}
