package tier

import (
	"sync"

	"rulecore/ast"
)

// Cache holds one *CachedExpression per rule ID. It is read-heavy with a
// single writer per key (the first evaluator to see a given rule ID
// inserts its entry; every later evaluator for that ID just reads it),
// so sync.Map is the natural fit for this domain's shared compile cache.
type Cache struct {
	entries sync.Map // rule ID -> *CachedExpression
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// GetOrInsert returns the cached entry for id, building and inserting one
// from expr if none exists yet. Concurrent first-insertions for the same
// id are safe: LoadOrStore discards whichever CachedExpression loses the
// race, since both are equivalent pure functions of expr.
func (c *Cache) GetOrInsert(id string, expr ast.Expression) *CachedExpression {
	entry := NewCachedExpression(expr)
	actual, _ := c.entries.LoadOrStore(id, entry)
	return actual.(*CachedExpression)
}

// Get returns the cached entry for id, if any.
func (c *Cache) Get(id string) (*CachedExpression, bool) {
	v, ok := c.entries.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*CachedExpression), true
}

// Delete evicts the cached entry for id, if present.
func (c *Cache) Delete(id string) {
	c.entries.Delete(id)
}
