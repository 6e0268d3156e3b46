package app

import (
	"sync"
	"time"

	"certificados_dashboard/internal/domain/certificate"
)

type rangeKey struct {
	start, end string
}

func keyOf(dr certificate.DateRange) rangeKey {
	return rangeKey{
		start: dr.Start.Format(certificate.InputLayout),
		end:   dr.End.Format(certificate.InputLayout),
	}
}

type cacheEntry struct {
	rs        certificate.ResultSet
	expiresAt time.Time
}

// ResultCache maps a (start, end) pair to the ResultSet fetched for it.
// Entries live for ttl; there is no size bound.
type ResultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[rangeKey]cacheEntry
}

func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[rangeKey]cacheEntry),
	}
}

// Get returns the cached set for dr if present and not expired.
func (c *ResultCache) Get(dr certificate.DateRange) (certificate.ResultSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := keyOf(dr)
	e, ok := c.entries[k]
	if !ok {
		return certificate.ResultSet{}, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, k)
		return certificate.ResultSet{}, false
	}
	return e.rs, true
}

func (c *ResultCache) Put(dr certificate.DateRange, rs certificate.ResultSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[keyOf(dr)] = cacheEntry{rs: rs, expiresAt: c.now().Add(c.ttl)}
}

// PurgeExpired drops expired entries and returns how many were removed.
func (c *ResultCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
