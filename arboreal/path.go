package arboreal

import (
	"fmt"
	"strings"

	"github.com/yob/arboreal/types"
)

// codec encodes and decodes ancestor chains. The canonical form carries
// a leading and trailing delimiter with one identifier per segment:
// "/a/b/" is the path of a node whose root ancestor is a and parent is
// b. The empty chain (a root's path) encodes to the delimiter alone.
//
// Identifiers must come from a delimiter-free domain; the engine
// enforces that at its boundary instead of escaping (see types.Config).
type codec struct {
	delim string
}

func newCodec(delim string) codec {
	return codec{delim: delim}
}

// root returns the encoding of the empty ancestor chain.
func (c codec) root() string {
	return c.delim
}

// Encode renders an ancestor chain, root-first, in canonical form.
func (c codec) Encode(ids []string) string {
	if len(ids) == 0 {
		return c.delim
	}
	return c.delim + strings.Join(ids, c.delim) + c.delim
}

// Decode parses a canonical path back into its ancestor chain. The
// chain is returned root-first. Anything that does not start and end
// with the delimiter, or contains an empty segment, fails with
// ErrMalformedPath.
func (c codec) Decode(path string) ([]string, error) {
	if path == c.delim {
		return nil, nil
	}
	if len(path) < 2 || !strings.HasPrefix(path, c.delim) || !strings.HasSuffix(path, c.delim) {
		return nil, fmt.Errorf("%w: %q", types.ErrMalformedPath, path)
	}
	segments := strings.Split(path[len(c.delim):len(path)-len(c.delim)], c.delim)
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", types.ErrMalformedPath, path)
		}
	}
	return segments, nil
}

// childPrefix returns the path every child of the given chain+id would
// carry, which doubles as the descendant prefix: a node is a descendant
// exactly when its path starts with this string. Because the prefix is
// delimiter-terminated, matching is exact-token: id "12" never matches
// inside id "123".
func (c codec) childPrefix(ancestors []string, id string) string {
	return c.Encode(append(append([]string(nil), ancestors...), id))
}

// checkID rejects identifiers that would collide with the delimiter.
func (c codec) checkID(id string) error {
	if strings.Contains(id, c.delim) {
		return fmt.Errorf("%w: %q", types.ErrInvalidID, id)
	}
	return nil
}
