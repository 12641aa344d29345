package resource

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store implementation backed by a map.
// It is intended for tests and single-instance deployments where durability
// is not required. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

func (ms *MemoryStore) Insert(ctx context.Context, rec Record) (Record, error) {
	stored := maps.Clone(rec)

	id, _ := stored["id"].(string)
	if id == "" {
		id = uuid.New().String()
		stored["id"] = id
	}

	ms.mu.Lock()
	ms.records[id] = stored
	ms.mu.Unlock()

	return maps.Clone(stored), nil
}

func (ms *MemoryStore) Update(ctx context.Context, id string, rec Record) (Record, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.records[id]; !exists {
		return nil, ErrNotFound
	}

	stored := maps.Clone(rec)
	stored["id"] = id
	ms.records[id] = stored

	return maps.Clone(stored), nil
}

func (ms *MemoryStore) Patch(ctx context.Context, id string, fields Record) (Record, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	stored, exists := ms.records[id]
	if !exists {
		return nil, ErrNotFound
	}

	for k, v := range fields {
		if k == "id" {
			continue
		}
		stored[k] = v
	}

	return maps.Clone(stored), nil
}

func (ms *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	stored, exists := ms.records[id]
	if !exists {
		return nil, ErrNotFound
	}

	return maps.Clone(stored), nil
}

func (ms *MemoryStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.records[id]; !exists {
		return ErrNotFound
	}

	delete(ms.records, id)
	return nil
}

func (ms *MemoryStore) Query(ctx context.Context, filter Filter) ([]Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var result []Record
	for _, rec := range ms.records {
		if matches(rec, filter) {
			result = append(result, maps.Clone(rec))
		}
	}

	return result, nil
}

func (ms *MemoryStore) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]Record, 0, len(ms.records))
	for _, rec := range ms.records {
		if opts.Limit > 0 && int64(len(result)) >= opts.Limit {
			break
		}
		result = append(result, maps.Clone(rec))
	}

	return result, nil
}

// matches reports whether a record satisfies every filter condition.
func matches(rec Record, filter Filter) bool {
	for field, cond := range filter {
		value, exists := rec[field]

		ops, isOps := cond.(map[string]any)
		if !isOps {
			if !exists || compare(value, cond) != 0 {
				return false
			}
			continue
		}

		for op, operand := range ops {
			if !exists {
				return false
			}
			c := compare(value, operand)
			switch op {
			case OpGTE:
				if c < 0 {
					return false
				}
			case OpGT:
				if c <= 0 {
					return false
				}
			case OpLTE:
				if c > 0 {
					return false
				}
			case OpLT:
				if c >= 0 {
					return false
				}
			case OpNE:
				if c == 0 {
					return false
				}
			default:
				return false
			}
		}
	}

	return true
}

// compare orders two field values: -1 if a < b, 0 if equal, 1 if a > b.
// Times compare chronologically, numbers numerically after normalization,
// everything else by string equality (inequality reported as 1).
func compare(a, b any) int {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		}
	}

	if a == b {
		return 0
	}
	return 1
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
