package format

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes another Formatter by input text.
//
// Errors are not cached, so a transient prettier failure is retried the next
// time the same snippet is formatted.
type Cached struct {
	next  Formatter
	cache *lru.Cache[string, string]
}

// NewCached wraps next with an LRU cache holding up to size entries.
func NewCached(next Formatter, size int) (*Cached, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create format cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Format implements Formatter.
func (c *Cached) Format(code string) (string, error) {
	if out, ok := c.cache.Get(code); ok {
		return out, nil
	}
	out, err := c.next.Format(code)
	if err != nil {
		return "", err
	}
	c.cache.Add(code, out)
	return out, nil
}

// Len returns the number of cached snippets.
func (c *Cached) Len() int {
	return c.cache.Len()
}
