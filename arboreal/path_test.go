package arboreal

import (
	"errors"
	"testing"

	"github.com/yob/arboreal/types"
)

func TestEncode(t *testing.T) {
	c := newCodec("/")

	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty chain is the root path", nil, "/"},
		{"single ancestor", []string{"a"}, "/a/"},
		{"chain keeps order", []string{"a", "b", "c"}, "/a/b/c/"},
		{"numeric ids", []string{"12", "123"}, "/12/123/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Encode(tt.ids); got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.ids, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	c := newCodec("/")

	t.Run("round trips", func(t *testing.T) {
		for _, ids := range [][]string{nil, {"a"}, {"a", "b", "c"}, {"12", "123"}} {
			got, err := c.Decode(c.Encode(ids))
			if err != nil {
				t.Fatalf("Decode(Encode(%v)) failed: %v", ids, err)
			}
			if len(got) != len(ids) {
				t.Fatalf("Decode(Encode(%v)) = %v", ids, got)
			}
			for i := range ids {
				if got[i] != ids[i] {
					t.Errorf("Decode(Encode(%v))[%d] = %q", ids, i, got[i])
				}
			}
		}
	})

	t.Run("root path decodes to empty chain", func(t *testing.T) {
		got, err := c.Decode("/")
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty chain, got %v", got)
		}
	})

	t.Run("malformed inputs", func(t *testing.T) {
		for _, path := range []string{"", "a", "/a", "a/", "//", "/a//b/", "///"} {
			if _, err := c.Decode(path); !errors.Is(err, types.ErrMalformedPath) {
				t.Errorf("Decode(%q): expected ErrMalformedPath, got %v", path, err)
			}
		}
	})
}

func TestChildPrefix(t *testing.T) {
	c := newCodec("/")

	if got := c.childPrefix(nil, "a"); got != "/a/" {
		t.Errorf("childPrefix(nil, a) = %q", got)
	}
	if got := c.childPrefix([]string{"a", "b"}, "c"); got != "/a/b/c/" {
		t.Errorf("childPrefix([a b], c) = %q", got)
	}

	t.Run("does not mutate the chain", func(t *testing.T) {
		chain := make([]string, 1, 4)
		chain[0] = "a"
		_ = c.childPrefix(chain, "b")
		_ = c.childPrefix(chain, "c")
		if chain[0] != "a" || len(chain) != 1 {
			t.Errorf("chain mutated: %v", chain)
		}
	})

	t.Run("prefix match is exact token", func(t *testing.T) {
		// id 12 must not be treated as an ancestor of a node under 123.
		under123 := c.childPrefix(nil, "123")
		for12 := c.childPrefix(nil, "12")
		if len(under123) >= len(for12) && under123[:len(for12)] == for12 {
			t.Errorf("prefix %q wrongly matches %q", for12, under123)
		}
	})
}

func TestCheckID(t *testing.T) {
	c := newCodec("/")
	if err := c.checkID("abc-123"); err != nil {
		t.Errorf("unexpected error for clean id: %v", err)
	}
	if err := c.checkID("a/b"); !errors.Is(err, types.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestCustomDelimiter(t *testing.T) {
	c := newCodec("|")
	if got := c.Encode([]string{"a", "b"}); got != "|a|b|" {
		t.Errorf("Encode = %q", got)
	}
	chain, err := c.Decode("|a|b|")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(chain) != 2 || chain[0] != "a" || chain[1] != "b" {
		t.Errorf("Decode = %v", chain)
	}
	// "/" is an ordinary id character under a "|" delimiter.
	if err := c.checkID("a/b"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
