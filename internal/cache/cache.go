// Package cache keeps recently assembled profiles keyed by canonical
// URL so repeated requests inside the TTL skip the page load entirely.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/s4yuba/x-card-generator/internal/models"
)

// ProfileCache is consulted before fetching and written after a
// successful assembly.
type ProfileCache interface {
	Get(ctx context.Context, canonicalURL string) (*models.Profile, bool)
	Set(ctx context.Context, canonicalURL string, profile *models.Profile)
}

const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 100
)

type memoryEntry struct {
	key       string
	profile   *models.Profile
	expiresAt time.Time
}

// MemoryCache is the default bounded in-process cache: TTL expiry plus
// oldest-insertion eviction once capacity is reached.
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List
	ttl      time.Duration
	capacity int
}

func NewMemoryCache(ttl time.Duration, capacity int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryCache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		ttl:      ttl,
		capacity: capacity,
	}
}

func (c *MemoryCache) Get(_ context.Context, canonicalURL string) (*models.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[canonicalURL]
	if !ok {
		return nil, false
	}

	entry := el.Value.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.remove(el)
		return nil, false
	}
	return entry.profile, true
}

func (c *MemoryCache) Set(_ context.Context, canonicalURL string, profile *models.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[canonicalURL]; ok {
		c.remove(el)
	}

	for c.order.Len() >= c.capacity {
		c.remove(c.order.Front())
	}

	el := c.order.PushBack(&memoryEntry{
		key:       canonicalURL,
		profile:   profile,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.entries[canonicalURL] = el
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *MemoryCache) remove(el *list.Element) {
	entry := el.Value.(*memoryEntry)
	delete(c.entries, entry.key)
	c.order.Remove(el)
}
