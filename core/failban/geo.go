package failban

import (
	"context"
	"strings"
	"sync"
)

// Resolver looks up the ISO country code for an IP address. Implementations
// return an empty string (with nil error) when the IP has no match.
// A MaxMind-backed resolver ships in integration/geoip.
type Resolver interface {
	Country(ctx context.Context, ip string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, ip string) (string, error)

func (f ResolverFunc) Country(ctx context.Context, ip string) (string, error) {
	return f(ctx, ip)
}

// geoCache is a bounded ip-to-country cache. Eviction is oldest-inserted-first
// once capacity is exceeded (insertion order, not LRU). Negative results
// (no-match) are cached too.
type geoCache struct {
	mu      sync.Mutex
	entries map[string]string
	order   []string
	cap     int
}

func newGeoCache(capacity int) *geoCache {
	if capacity <= 0 {
		capacity = 1000
	}
	return &geoCache{
		entries: make(map[string]string),
		cap:     capacity,
	}
}

func (c *geoCache) get(ip string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	country, ok := c.entries[ip]
	return country, ok
}

func (c *geoCache) set(ip, country string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[ip]; exists {
		c.entries[ip] = country
		return
	}

	if len(c.entries) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[ip] = country
	c.order = append(c.order, ip)
}

// resolveCountry returns the country for an IP, consulting the cache first.
// Resolver failures are reported as unresolved along with the error.
func (m *Manager) resolveCountry(ctx context.Context, ip string) (string, error) {
	if m.geoCache != nil {
		if country, ok := m.geoCache.get(ip); ok {
			return country, nil
		}
	}

	country, err := m.resolver.Country(ctx, ip)
	if err != nil {
		return "", err
	}

	country = strings.ToUpper(country)
	if m.geoCache != nil {
		m.geoCache.set(ip, country)
	}

	return country, nil
}

func containsCountry(list []string, country string) bool {
	for _, c := range list {
		if strings.EqualFold(c, country) {
			return true
		}
	}
	return false
}
