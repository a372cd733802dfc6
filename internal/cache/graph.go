package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/paperforge/paperforge-core/internal/citation"
	"github.com/paperforge/paperforge-core/internal/model"
)

// GraphCache holds one built citation graph per tenant, bounded by entry
// count rather than TTL — a citation graph is cheap to keep around and
// expensive to rebuild, but a deployment with many tenants still needs an
// eviction bound.
type GraphCache struct {
	entries *lru.Cache[model.TenantID, *citation.Graph]
}

// NewGraphCache builds a GraphCache holding at most size tenants' graphs.
func NewGraphCache(size int) (*GraphCache, error) {
	entries, err := lru.New[model.TenantID, *citation.Graph](size)
	if err != nil {
		return nil, fmt.Errorf("building citation graph cache: %w", err)
	}
	return &GraphCache{entries: entries}, nil
}

// Get returns the cached graph for tenant, if present.
func (c *GraphCache) Get(tenant model.TenantID) (*citation.Graph, bool) {
	return c.entries.Get(tenant)
}

// Put stores graph for tenant, evicting the least-recently-used tenant's
// graph if the cache is at capacity.
func (c *GraphCache) Put(tenant model.TenantID, graph *citation.Graph) {
	c.entries.Add(tenant, graph)
}

// Invalidate evicts tenant's cached graph so the next lookup misses and
// forces a rebuild from the store.
func (c *GraphCache) Invalidate(tenant model.TenantID) {
	c.entries.Remove(tenant)
}

// Len returns the number of tenants currently cached.
func (c *GraphCache) Len() int {
	return c.entries.Len()
}
