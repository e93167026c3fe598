package checker

import (
	"crypto/sha256"
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/spec-check/internal/item"
)

const defaultCacheCapacity = 10_000

// extractFunc parses file content into an item set.
type extractFunc func(path string, content []byte) (*item.Set, error)

type cacheEntry struct {
	hash [sha256.Size]byte
	set  *item.Set
	err  error
}

// parseCache memoizes extraction results by path, validated by content hash.
// Parse failures are cached too so an unchanged broken file is not re-parsed.
type parseCache struct {
	entries otter.Cache[string, cacheEntry]
}

func newParseCache(capacity int) (*parseCache, error) {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	c, err := otter.MustBuilder[string, cacheEntry](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse cache: %w", err)
	}
	return &parseCache{entries: c}, nil
}

// load returns the cached set for path if content is unchanged, otherwise
// runs extract and stores the result.
func (c *parseCache) load(path string, content []byte, extract extractFunc) (set *item.Set, hit bool, err error) {
	hash := sha256.Sum256(content)
	if e, ok := c.entries.Get(path); ok && e.hash == hash {
		return e.set, true, e.err
	}

	set, err = extract(path, content)
	c.entries.Set(path, cacheEntry{hash: hash, set: set, err: err})
	return set, false, err
}

func (c *parseCache) close() {
	c.entries.Close()
}
