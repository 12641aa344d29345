package failban

import (
	"sync"
	"time"
)

// banEntry is the derived fast-path view of a ban. The durable record is
// authoritative; the cache entry must never outlive it.
type banEntry struct {
	ExpiresAt  time.Time
	Reason     string
	Violations int
}

// banCache is the in-memory enforcement cache, shared between request-path
// reads and the scheduled eviction job.
type banCache struct {
	mu      sync.RWMutex
	entries map[string]banEntry
}

func newBanCache() *banCache {
	return &banCache{entries: make(map[string]banEntry)}
}

func (c *banCache) get(ip string) (banEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[ip]
	return e, ok
}

func (c *banCache) set(ip string, e banEntry) {
	c.mu.Lock()
	c.entries[ip] = e
	c.mu.Unlock()
}

func (c *banCache) delete(ip string) {
	c.mu.Lock()
	delete(c.entries, ip)
	c.mu.Unlock()
}

func (c *banCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// sweep removes entries expired as of now and returns them so the caller can
// emit unban notifications.
func (c *banCache) sweep(now time.Time) map[string]banEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired map[string]banEntry
	for ip, e := range c.entries {
		if now.After(e.ExpiresAt) {
			if expired == nil {
				expired = make(map[string]banEntry)
			}
			expired[ip] = e
			delete(c.entries, ip)
		}
	}

	return expired
}

// violationLog is the in-memory sliding-window record of violations. It backs
// threshold counting when violation persistence is disabled or unavailable,
// and is pruned on access so stale timestamps age out of the window naturally.
type violationLog struct {
	mu   sync.Mutex
	byIP map[string][]time.Time
}

func newViolationLog() *violationLog {
	return &violationLog{byIP: make(map[string][]time.Time)}
}

// add records a violation timestamp and returns the count within
// [now-window, now] for the IP.
func (l *violationLog) add(ip string, now time.Time, window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := prune(l.byIP[ip], now.Add(-window))
	pruned = append(pruned, now)
	l.byIP[ip] = pruned

	return len(pruned)
}

// count returns the rolling count without recording anything.
func (l *violationLog) count(ip string, now time.Time, window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := prune(l.byIP[ip], now.Add(-window))
	if len(pruned) == 0 {
		delete(l.byIP, ip)
	} else {
		l.byIP[ip] = pruned
	}

	return len(pruned)
}

// clear drops all tracked violations for an IP, typically after a ban fires.
func (l *violationLog) clear(ip string) {
	l.mu.Lock()
	delete(l.byIP, ip)
	l.mu.Unlock()
}

func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && stamps[i].Before(cutoff) {
		i++
	}
	return stamps[i:]
}
