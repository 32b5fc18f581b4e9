package arboreal_test

import (
	"errors"
	"testing"

	"github.com/yob/arboreal/types"
)

func TestParent(t *testing.T) {
	h, _ := newHierarchy(t, types.Config{})
	g := loadGeography(t, h)

	t.Run("child", func(t *testing.T) {
		p, err := h.Parent(g.Melbourne.ID)
		if err != nil {
			t.Fatalf("parent failed: %v", err)
		}
		if p == nil || p.ID != g.Victoria.ID {
			t.Errorf("expected Victoria, got %+v", p)
		}
	})

	t.Run("root has no parent", func(t *testing.T) {
		p, err := h.Parent(g.Australia.ID)
		if err != nil {
			t.Fatalf("parent failed: %v", err)
		}
		if p != nil {
			t.Errorf("expected nil parent, got %+v", p)
		}
	})
}

func TestChildren(t *testing.T) {
	h, _ := newHierarchy(t, types.Config{})
	g := loadGeography(t, h)

	children, err := h.Children(g.Australia.ID)
	if err != nil {
		t.Fatalf("children failed: %v", err)
	}
	assertNames(t, children, "Victoria", "NSW")

	leaves, err := h.Children(g.Sydney.ID)
	if err != nil {
		t.Fatalf("children failed: %v", err)
	}
	if len(leaves) != 0 {
		t.Errorf("expected no children, got %v", names(leaves))
	}
}

func TestSiblings(t *testing.T) {
	t.Run("non-root siblings share the exact parent", func(t *testing.T) {
		h, _ := newHierarchy(t, types.Config{})
		g := loadGeography(t, h)

		siblings, err := h.Siblings(g.Victoria.ID)
		if err != nil {
			t.Fatalf("siblings failed: %v", err)
		}
		assertNames(t, siblings, "NSW")
	})

	t.Run("roots are not siblings by default", func(t *testing.T) {
		h, _ := newHierarchy(t, types.Config{})
		g := loadGeography(t, h)
		mustCreate(t, h, "NewZealand", "")

		siblings, err := h.Siblings(g.Australia.ID)
		if err != nil {
			t.Fatalf("siblings failed: %v", err)
		}
		if len(siblings) != 0 {
			t.Errorf("expected no root siblings, got %v", names(siblings))
		}
	})

	t.Run("roots are siblings when configured", func(t *testing.T) {
		h, _ := newHierarchy(t, types.Config{RootsAreSiblings: true})
		g := loadGeography(t, h)
		mustCreate(t, h, "NewZealand", "")

		siblings, err := h.Siblings(g.Australia.ID)
		if err != nil {
			t.Fatalf("siblings failed: %v", err)
		}
		assertNames(t, siblings, "NewZealand")
	})
}

func TestAncestors(t *testing.T) {
	h, store := newHierarchy(t, types.Config{})
	g := loadGeography(t, h)

	t.Run("ordered root-first", func(t *testing.T) {
		ancestors, err := h.Ancestors(g.Melbourne.ID)
		if err != nil {
			t.Fatalf("ancestors failed: %v", err)
		}
		assertNamesInOrder(t, ancestors, "Australia", "Victoria")
	})

	t.Run("root has no ancestors", func(t *testing.T) {
		ancestors, err := h.Ancestors(g.Australia.ID)
		if err != nil {
			t.Fatalf("ancestors failed: %v", err)
		}
		if len(ancestors) != 0 {
			t.Errorf("expected no ancestors, got %v", names(ancestors))
		}
	})

	t.Run("malformed path surfaces, never an empty answer", func(t *testing.T) {
		extra := mustCreate(t, h, "Corrupt", g.Australia.ID)
		tx, err := store.Begin(true)
		if err != nil {
			t.Fatalf("begin failed: %v", err)
		}
		n, err := tx.Get(extra.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		n.Path = "not a path"
		if err := tx.Update(n); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		_, err = h.Ancestors(extra.ID)
		if !errors.Is(err, types.ErrMalformedPath) {
			t.Errorf("expected ErrMalformedPath, got %v", err)
		}
	})
}

func TestDescendants(t *testing.T) {
	h, _ := newHierarchy(t, types.Config{})
	g := loadGeography(t, h)

	t.Run("whole subtree below the node", func(t *testing.T) {
		descendants, err := h.Descendants(g.Australia.ID)
		if err != nil {
			t.Fatalf("descendants failed: %v", err)
		}
		assertNames(t, descendants, "Victoria", "Melbourne", "NSW", "Sydney")
	})

	t.Run("excludes the node itself", func(t *testing.T) {
		descendants, err := h.Descendants(g.Victoria.ID)
		if err != nil {
			t.Fatalf("descendants failed: %v", err)
		}
		for _, d := range descendants {
			if d.ID == g.Victoria.ID {
				t.Error("node listed among its own descendants")
			}
		}
		assertNames(t, descendants, "Melbourne")
	})

	t.Run("leaf has none", func(t *testing.T) {
		descendants, err := h.Descendants(g.Sydney.ID)
		if err != nil {
			t.Fatalf("descendants failed: %v", err)
		}
		if len(descendants) != 0 {
			t.Errorf("expected none, got %v", names(descendants))
		}
	})
}

func TestSubtree(t *testing.T) {
	h, _ := newHierarchy(t, types.Config{})
	g := loadGeography(t, h)

	subtree, err := h.Subtree(g.Victoria.ID)
	if err != nil {
		t.Fatalf("subtree failed: %v", err)
	}
	assertNames(t, subtree, "Victoria", "Melbourne")

	descendants, err := h.Descendants(g.Victoria.ID)
	if err != nil {
		t.Fatalf("descendants failed: %v", err)
	}
	if len(subtree) != len(descendants)+1 {
		t.Errorf("subtree should be descendants plus self")
	}
}

func TestRoots(t *testing.T) {
	h, _ := newHierarchy(t, types.Config{})
	g := loadGeography(t, h)
	mustCreate(t, h, "NewZealand", "")

	roots, err := h.Roots()
	if err != nil {
		t.Fatalf("roots failed: %v", err)
	}
	assertNames(t, roots, "Australia", "NewZealand")

	for _, r := range roots {
		if r.ID == g.Melbourne.ID {
			t.Error("non-root listed in roots")
		}
	}
}
