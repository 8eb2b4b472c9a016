package commands

import (
	"zdguide/internal/domain"
)

// CacheState is the result of an IDCache lookup
type CacheState int

const (
	// NotCached means the store has not been asked about this id yet
	NotCached CacheState = iota
	// CachedFound means the id maps to a known local term
	CachedFound
	// CachedMissing means the store confirmed no local term has this id
	CachedMissing
)

type cacheKey struct {
	kind       domain.EntityKind
	externalID int64
}

// IDCache maps (kind, external id) to local terms for the length of one run.
// It is not safe for concurrent use.
type IDCache struct {
	entries map[cacheKey]*domain.Term
}

// NewIDCache returns an empty cache
func NewIDCache() *IDCache {
	return &IDCache{entries: make(map[cacheKey]*domain.Term)}
}

// Lookup returns the cached term for the id and whether the answer is known
func (c *IDCache) Lookup(kind domain.EntityKind, externalID int64) (*domain.Term, CacheState) {
	term, ok := c.entries[cacheKey{kind, externalID}]
	switch {
	case !ok:
		return nil, NotCached
	case term == nil:
		return nil, CachedMissing
	default:
		return term, CachedFound
	}
}

// Remember records term for the id; a nil term records a confirmed absence
func (c *IDCache) Remember(kind domain.EntityKind, externalID int64, term *domain.Term) {
	if term != nil {
		copied := *term
		term = &copied
	}
	c.entries[cacheKey{kind, externalID}] = term
}

// Len returns the number of cached entries, negative ones included
func (c *IDCache) Len() int {
	return len(c.entries)
}
