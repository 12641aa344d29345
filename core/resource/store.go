package resource

import "context"

// Record is a schemaless document. Every persisted record carries its
// identifier under the "id" key as a string.
type Record = map[string]any

// Filter selects records for Query. Plain values match by equality; nested
// maps keyed by an Op* constant express range conditions.
type Filter = map[string]any

// Supported filter operators.
const (
	OpGTE = "$gte"
	OpGT  = "$gt"
	OpLTE = "$lte"
	OpLT  = "$lt"
	OpNE  = "$ne"
)

// ListOptions bounds List results. Zero Limit means no limit.
type ListOptions struct {
	Limit int64
}

// Store is a CRUD handle bound to a single named resource.
// Implementations must be safe for concurrent use and must return ErrNotFound
// for missing records, distinguishable from transport failures.
type Store interface {
	// Insert persists a new record. If the record has no "id" field, the
	// implementation assigns one. Returns the stored record including its id.
	Insert(ctx context.Context, rec Record) (Record, error)

	// Update replaces the record with the given id. Returns ErrNotFound if
	// no such record exists.
	Update(ctx context.Context, id string, rec Record) (Record, error)

	// Patch merges the given fields into the record with the given id,
	// leaving other fields untouched. Returns ErrNotFound if no such record
	// exists.
	Patch(ctx context.Context, id string, fields Record) (Record, error)

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Delete removes the record with the given id. Returns ErrNotFound if no
	// such record exists.
	Delete(ctx context.Context, id string) error

	// Query returns all records matching the filter.
	Query(ctx context.Context, filter Filter) ([]Record, error)

	// List returns records up to opts.Limit, in unspecified order.
	List(ctx context.Context, opts ListOptions) ([]Record, error)
}
