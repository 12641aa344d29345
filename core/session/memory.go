package session

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastionkit/bastion/core/logger"
)

const defaultMaxEntries = 10000

// memoryEntry pairs a session with its expiry timer so an early Destroy can
// cancel the pending callback.
type memoryEntry[Data any] struct {
	sess  Session[Data]
	timer *time.Timer
}

// MemoryStore is a transient in-process session store. Capacity-bounded:
// inserting past MaxEntries evicts the oldest-inserted session. Expiry is
// enforced by a timer per entry, with a lazy check on Get as a backstop.
// Data does not survive restarts by design.
type MemoryStore[Data any] struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry[Data]
	order      []string // insertion order, oldest first
	maxEntries int
	logger     *slog.Logger

	evictions   atomic.Int64
	expirations atomic.Int64
}

// NewMemoryStore creates a transient in-process store bounded to maxEntries.
// A non-positive maxEntries falls back to the default capacity.
func NewMemoryStore[Data any](maxEntries int, log *slog.Logger) *MemoryStore[Data] {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &MemoryStore[Data]{
		entries:    make(map[string]*memoryEntry[Data]),
		maxEntries: maxEntries,
		logger:     log,
	}
}

func (ms *MemoryStore[Data]) Get(ctx context.Context, id string) (*Session[Data], error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry, exists := ms.entries[id]
	if !exists {
		return nil, nil
	}

	// Lazy backstop: the timer may not have fired yet.
	if entry.sess.IsExpired() {
		ms.removeLocked(id)
		ms.expirations.Add(1)
		return nil, nil
	}

	sess := entry.sess
	return &sess, nil
}

func (ms *MemoryStore[Data]) Set(ctx context.Context, id, userID string, data Data, ttl time.Duration) error {
	now := time.Now()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if entry, exists := ms.entries[id]; exists {
		entry.sess.UserID = userID
		entry.sess.Data = data
		entry.sess.ExpiresAt = now.Add(ttl)
		entry.timer.Stop()
		entry.timer = ms.scheduleExpiry(id, ttl)
		return nil
	}

	if len(ms.entries) >= ms.maxEntries {
		ms.evictOldestLocked()
	}

	ms.entries[id] = &memoryEntry[Data]{
		sess: Session[Data]{
			ID:        id,
			UserID:    userID,
			Data:      data,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		},
		timer: ms.scheduleExpiry(id, ttl),
	}
	ms.order = append(ms.order, id)

	return nil
}

func (ms *MemoryStore[Data]) Destroy(ctx context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.removeLocked(id)
	return nil
}

func (ms *MemoryStore[Data]) Touch(ctx context.Context, id string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry, exists := ms.entries[id]
	if !exists || entry.sess.IsExpired() {
		return nil
	}

	entry.sess.ExpiresAt = time.Now().Add(ttl)
	entry.timer.Stop()
	entry.timer = ms.scheduleExpiry(id, ttl)

	return nil
}

func (ms *MemoryStore[Data]) Stats(ctx context.Context) (Stats, error) {
	ms.mu.Lock()
	entries := int64(len(ms.entries))
	ms.mu.Unlock()

	return Stats{
		Driver:      string(DriverMemory),
		Entries:     entries,
		Evictions:   ms.evictions.Load(),
		Expirations: ms.expirations.Load(),
	}, nil
}

func (ms *MemoryStore[Data]) Clear(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, entry := range ms.entries {
		entry.timer.Stop()
	}
	ms.entries = make(map[string]*memoryEntry[Data])
	ms.order = nil

	return nil
}

// scheduleExpiry arms the per-entry expiry timer. Caller must hold ms.mu.
func (ms *MemoryStore[Data]) scheduleExpiry(id string, ttl time.Duration) *time.Timer {
	return time.AfterFunc(ttl, func() {
		ms.mu.Lock()
		defer ms.mu.Unlock()

		entry, exists := ms.entries[id]
		if !exists || !entry.sess.IsExpired() {
			// The session was destroyed or re-set with a fresh TTL after this
			// timer was armed.
			return
		}

		ms.removeLocked(id)
		ms.expirations.Add(1)
	})
}

// evictOldestLocked removes the oldest-inserted entry to make room.
// Caller must hold ms.mu.
func (ms *MemoryStore[Data]) evictOldestLocked() {
	if len(ms.order) == 0 {
		return
	}

	oldest := ms.order[0]
	ms.removeLocked(oldest)
	ms.evictions.Add(1)
	ms.logger.Debug("session evicted at capacity", logger.ID("session_id", oldest))
}

// removeLocked deletes an entry, stops its timer and drops it from the
// insertion order. Caller must hold ms.mu.
func (ms *MemoryStore[Data]) removeLocked(id string) {
	entry, exists := ms.entries[id]
	if !exists {
		return
	}

	entry.timer.Stop()
	delete(ms.entries, id)
	if i := slices.Index(ms.order, id); i >= 0 {
		ms.order = slices.Delete(ms.order, i, i+1)
	}
}
