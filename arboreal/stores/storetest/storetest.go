// Package storetest holds the contract test suite every Store backend
// must pass. Backend packages call Run from their own tests with a
// factory that opens a fresh, empty store.
package storetest

import (
	"errors"
	"testing"

	"github.com/yob/arboreal/types"
)

// Factory opens a fresh, empty store for one test. Cleanup registered
// with t.Cleanup.
type Factory func(t *testing.T) types.Store

// Run exercises the Store contract against the given factory.
func Run(t *testing.T, open Factory) {
	t.Run("create assigns id and timestamps", func(t *testing.T) {
		store := open(t)
		n := mustCreate(t, store, &types.Node{Path: "/", Name: "root"})
		if n.ID == "" {
			t.Fatal("expected store to assign an id")
		}
		if n.CreatedAt.IsZero() || n.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be set")
		}
	})

	t.Run("get returns not found for missing id", func(t *testing.T) {
		store := open(t)
		tx := mustBegin(t, store, false)
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.Get("no-such-node"); !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update replaces fields", func(t *testing.T) {
		store := open(t)
		n := mustCreate(t, store, &types.Node{Path: "/", Name: "before"})

		tx := mustBegin(t, store, true)
		n.Name = "after"
		n.Path = "/p/"
		n.ParentID = "p"
		if err := tx.Update(n); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		got := mustGet(t, store, n.ID)
		if got.Name != "after" || got.Path != "/p/" || got.ParentID != "p" {
			t.Errorf("update not persisted: %+v", got)
		}
	})

	t.Run("update of missing node fails", func(t *testing.T) {
		store := open(t)
		tx := mustBegin(t, store, true)
		defer func() { _ = tx.Rollback() }()
		err := tx.Update(&types.Node{ID: "ghost", Path: "/"})
		if !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete removes node", func(t *testing.T) {
		store := open(t)
		n := mustCreate(t, store, &types.Node{Path: "/"})

		tx := mustBegin(t, store, true)
		if err := tx.Delete(n.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		tx = mustBegin(t, store, false)
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.Get(n.ID); !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("query filters", func(t *testing.T) {
		store := open(t)
		root := mustCreate(t, store, &types.Node{Path: "/", Name: "root"})
		childPath := "/" + root.ID + "/"
		a := mustCreate(t, store, &types.Node{ParentID: root.ID, Path: childPath, Name: "a"})
		b := mustCreate(t, store, &types.Node{ParentID: root.ID, Path: childPath, Name: "b"})
		grandPath := childPath + a.ID + "/"
		c := mustCreate(t, store, &types.Node{ParentID: a.ID, Path: grandPath, Name: "c"})

		tx := mustBegin(t, store, false)
		defer func() { _ = tx.Rollback() }()

		t.Run("by parent id", func(t *testing.T) {
			got, err := tx.Query(types.Filter{ParentID: &root.ID})
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			assertIDs(t, got, a.ID, b.ID)
		})

		t.Run("roots by empty parent id", func(t *testing.T) {
			empty := ""
			got, err := tx.Query(types.Filter{ParentID: &empty})
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			assertIDs(t, got, root.ID)
		})

		t.Run("by path prefix", func(t *testing.T) {
			got, err := tx.Query(types.Filter{PathPrefix: childPath})
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			assertIDs(t, got, a.ID, b.ID, c.ID)
		})

		t.Run("by exact path", func(t *testing.T) {
			got, err := tx.Query(types.Filter{PathExact: "/"})
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			assertIDs(t, got, root.ID)
		})

		t.Run("by ids preserves requested order", func(t *testing.T) {
			got, err := tx.Query(types.Filter{IDs: []string{c.ID, "missing", root.ID}})
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			if len(got) != 2 || got[0].ID != c.ID || got[1].ID != root.ID {
				t.Errorf("expected [%s %s] in order, got %v", c.ID, root.ID, idsOf(got))
			}
		})

		t.Run("empty filter returns everything", func(t *testing.T) {
			got, err := tx.Query(types.Filter{})
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			assertIDs(t, got, root.ID, a.ID, b.ID, c.ID)
		})
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		store := open(t)
		n := mustCreate(t, store, &types.Node{Path: "/", Name: "keep"})

		tx := mustBegin(t, store, true)
		n.Name = "discard"
		if err := tx.Update(n); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}

		got := mustGet(t, store, n.ID)
		if got.Name != "keep" {
			t.Errorf("rollback leaked a write: name = %q", got.Name)
		}
	})

	t.Run("writes are invisible until commit", func(t *testing.T) {
		store := open(t)
		wtx := mustBegin(t, store, true)
		created := &types.Node{Path: "/", Name: "pending"}
		if err := wtx.Create(created); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := wtx.Commit(); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		got := mustGet(t, store, created.ID)
		if got.Name != "pending" {
			t.Errorf("unexpected node after commit: %+v", got)
		}
	})
}

func mustBegin(t *testing.T, store types.Store, writable bool) types.Tx {
	t.Helper()
	tx, err := store.Begin(writable)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	return tx
}

func mustCreate(t *testing.T, store types.Store, n *types.Node) *types.Node {
	t.Helper()
	tx := mustBegin(t, store, true)
	if err := tx.Create(n); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	return n
}

func mustGet(t *testing.T, store types.Store, id string) *types.Node {
	t.Helper()
	tx := mustBegin(t, store, false)
	defer func() { _ = tx.Rollback() }()
	n, err := tx.Get(id)
	if err != nil {
		t.Fatalf("get %s failed: %v", id, err)
	}
	return n
}

func idsOf(nodes []*types.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// assertIDs checks the result set contains exactly the given ids,
// ignoring order.
func assertIDs(t *testing.T, got []*types.Node, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d nodes %v, got %d %v", len(want), want, len(got), idsOf(got))
	}
	seen := make(map[string]bool, len(got))
	for _, n := range got {
		seen[n.ID] = true
	}
	for _, id := range want {
		if !seen[id] {
			t.Errorf("missing node %s in result %v", id, idsOf(got))
		}
	}
}
