package cache

import (
	"testing"

	"github.com/paperforge/paperforge-core/internal/citation"
	"github.com/paperforge/paperforge-core/internal/model"
)

func TestGraphCache_PutGetInvalidate(t *testing.T) {
	c, err := NewGraphCache(8)
	if err != nil {
		t.Fatalf("NewGraphCache: %v", err)
	}

	tenant := model.NewTenantID()
	if _, ok := c.Get(tenant); ok {
		t.Fatal("expected miss before Put")
	}

	graph := citation.New()
	c.Put(tenant, graph)

	got, ok := c.Get(tenant)
	if !ok || got != graph {
		t.Fatal("expected to get back the same graph pointer")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}

	c.Invalidate(tenant)
	if _, ok := c.Get(tenant); ok {
		t.Fatal("expected miss after Invalidate")
	}
}

func TestGraphCache_EvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	c, err := NewGraphCache(1)
	if err != nil {
		t.Fatalf("NewGraphCache: %v", err)
	}

	tenantA := model.NewTenantID()
	tenantB := model.NewTenantID()

	c.Put(tenantA, citation.New())
	c.Put(tenantB, citation.New())

	if _, ok := c.Get(tenantA); ok {
		t.Fatal("tenantA should have been evicted once the cache exceeded capacity")
	}
	if _, ok := c.Get(tenantB); !ok {
		t.Fatal("tenantB should still be cached")
	}
}
