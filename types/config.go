package types

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultDelimiter separates ancestor identifiers inside a cached path.
const DefaultDelimiter = "/"

// Config controls engine behavior. The zero value is usable: delimiter
// "/", roots are not siblings of each other, logging discarded.
type Config struct {
	// Delimiter is the single character separating ancestor ids in a
	// cached path. Identifiers containing the delimiter are rejected
	// with ErrInvalidID rather than escaped; stores that assign ids
	// themselves (UUIDs, integers) never trip this.
	Delimiter string

	// RootsAreSiblings decides whether all roots count as each other's
	// siblings (they share the same absent parent). Off by default.
	RootsAreSiblings bool

	// Logger receives structured engine logs. Nil discards.
	Logger *slog.Logger
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if c.Delimiter == "" {
		c.Delimiter = DefaultDelimiter
	}
	if len([]rune(c.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if strings.TrimSpace(c.Delimiter) == "" {
		return fmt.Errorf("delimiter must not be whitespace")
	}
	return nil
}
