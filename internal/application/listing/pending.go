package listing

import (
	"strings"
	"sync"
	"time"

	"github.com/nutribridge-api/internal/domain"
)

// pendingCache holds listings whose durable write failed. Entries are kept in
// insertion order and never retried; they age out of the feed with their window.
type pendingCache struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Listing
}

func newPendingCache() *pendingCache {
	return &pendingCache{byID: make(map[string]domain.Listing)}
}

func (c *pendingCache) put(l domain.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[l.ListingID]; !ok {
		c.order = append(c.order, l.ListingID)
	}
	c.byID[l.ListingID] = l
}

func (c *pendingCache) get(id string) (domain.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.byID[id]
	return l, ok
}

func (c *pendingCache) setPhotoURL(id, url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.byID[id]
	if !ok {
		return false
	}
	l.PhotoURL = &url
	c.byID[id] = l
	return true
}

// findByTitle returns the oldest cached entry with exactly this title.
func (c *pendingCache) findByTitle(title string) (domain.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.order {
		if l := c.byID[id]; l.Title == title {
			return l, true
		}
	}
	return domain.Listing{}, false
}

func (c *pendingCache) list() []domain.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Listing, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Merge combines durable listings with cached ones. Durable entries keep their
// order and win on id collision; cache-only entries are appended in cache order.
func Merge(durable, cached []domain.Listing) []domain.Listing {
	seen := make(map[string]struct{}, len(durable))
	out := make([]domain.Listing, 0, len(durable)+len(cached))
	for _, l := range durable {
		seen[l.ListingID] = struct{}{}
		out = append(out, l)
	}
	for _, l := range cached {
		if _, ok := seen[l.ListingID]; ok {
			continue
		}
		seen[l.ListingID] = struct{}{}
		out = append(out, l)
	}
	return out
}

// matches reports whether l belongs in the feed at now for the given filter.
func matches(l *domain.Listing, now time.Time, pincode string) bool {
	if l.Expired(now) {
		return false
	}
	return pincode == "" || strings.Contains(l.Pincode, pincode)
}
