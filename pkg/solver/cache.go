package solver

import (
	"sync"

	"tsolve/pkg/types"
)

// relKey identifies one relation verdict: the handle pair, the relation
// asked, and the config bits that can change the answer. Verdicts are
// pure functions of the key (the interner is append-only), so staleness
// is impossible; the cache is purely a performance structure.
type relKey struct {
	src, tgt types.TypeId
	rel      Relation
	bits     uint8
}

type relationCache struct {
	mu sync.RWMutex
	m  map[relKey]bool
}

func newRelationCache() *relationCache {
	return &relationCache{m: make(map[relKey]bool)}
}

func (c *relationCache) get(k relKey) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[k]
	return v, ok
}

func (c *relationCache) put(k relKey, v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[k] = v
}
