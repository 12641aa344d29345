package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/bastionkit/bastion/core/resource"
)

const defaultResourceName = "oidc_sessions"

// ResourceStore persists sessions through a durable document-resource
// collaborator. Expiry is tracked as an expiresAt timestamp field; actual
// reclamation is delegated to the backing store's own time-based purge (for
// MongoDB, a TTL index on expiresAt), so Get treats expired-but-unpurged
// records as absent.
type ResourceStore[Data any] struct {
	store  resource.Store
	name   string // resource name, used in logs and errors only
	logger *slog.Logger
}

// NewResourceStore creates a session store over the given resource handle.
// An empty name falls back to "oidc_sessions".
func NewResourceStore[Data any](store resource.Store, name string, log *slog.Logger) (*ResourceStore[Data], error) {
	if store == nil {
		return nil, ErrMissingResourceStore
	}
	if name == "" {
		name = defaultResourceName
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &ResourceStore[Data]{
		store:  store,
		name:   name,
		logger: log,
	}, nil
}

func (ds *ResourceStore[Data]) Get(ctx context.Context, id string) (*Session[Data], error) {
	rec, err := ds.store.Get(ctx, id)
	if errors.Is(err, resource.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	sess, err := ds.decode(id, rec)
	if err != nil {
		return nil, err
	}

	// The purge collaborator may lag behind the expiry timestamp; an expired
	// record must never be returned as a valid session.
	if sess.IsExpired() {
		return nil, nil
	}

	return sess, nil
}

func (ds *ResourceStore[Data]) Set(ctx context.Context, id, userID string, data Data, ttl time.Duration) error {
	now := time.Now()
	rec := resource.Record{
		"id":        id,
		"userId":    userID,
		"data":      data,
		"createdAt": now,
		"expiresAt": now.Add(ttl),
	}

	_, err := ds.store.Update(ctx, id, rec)
	if errors.Is(err, resource.ErrNotFound) {
		// Create-or-update is a single logical operation for the caller.
		_, err = ds.store.Insert(ctx, rec)
	}

	return err
}

func (ds *ResourceStore[Data]) Destroy(ctx context.Context, id string) error {
	if err := ds.store.Delete(ctx, id); err != nil && !errors.Is(err, resource.ErrNotFound) {
		return err
	}
	return nil
}

func (ds *ResourceStore[Data]) Touch(ctx context.Context, id string, ttl time.Duration) error {
	rec, err := ds.store.Get(ctx, id)
	if errors.Is(err, resource.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	sess, err := ds.decode(id, rec)
	if err != nil {
		return err
	}
	if sess.IsExpired() {
		return nil
	}

	_, err = ds.store.Patch(ctx, id, resource.Record{"expiresAt": time.Now().Add(ttl)})
	if errors.Is(err, resource.ErrNotFound) {
		// Lost a race with destroy or purge; last write wins.
		return nil
	}
	return err
}

func (ds *ResourceStore[Data]) Stats(ctx context.Context) (Stats, error) {
	recs, err := ds.store.List(ctx, resource.ListOptions{})
	if err != nil {
		return Stats{Driver: string(DriverResource)}, err
	}

	stats := Stats{Driver: string(DriverResource)}
	now := time.Now()
	for _, rec := range recs {
		if exp, ok := rec["expiresAt"].(time.Time); ok && now.After(exp) {
			continue
		}
		stats.Entries++
	}

	return stats, nil
}

func (ds *ResourceStore[Data]) Clear(ctx context.Context) error {
	recs, err := ds.store.List(ctx, resource.ListOptions{})
	if err != nil {
		return err
	}

	for _, rec := range recs {
		id, _ := rec["id"].(string)
		if id == "" {
			continue
		}
		if err := ds.store.Delete(ctx, id); err != nil && !errors.Is(err, resource.ErrNotFound) {
			return err
		}
	}

	return nil
}

// decode maps a stored record back to a session. The data field comes back as
// a typed value from the memory store but as a decoded map from document
// stores, so a JSON round-trip handles the latter.
func (ds *ResourceStore[Data]) decode(id string, rec resource.Record) (*Session[Data], error) {
	sess := Session[Data]{ID: id}

	sess.UserID, _ = rec["userId"].(string)
	if created, ok := rec["createdAt"].(time.Time); ok {
		sess.CreatedAt = created
	}
	if expires, ok := rec["expiresAt"].(time.Time); ok {
		sess.ExpiresAt = expires
	}

	switch data := rec["data"].(type) {
	case nil:
	case Data:
		sess.Data = data
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, errors.Join(ErrDecodeSession, err)
		}
		if err := json.Unmarshal(raw, &sess.Data); err != nil {
			return nil, errors.Join(ErrDecodeSession, err)
		}
	}

	return &sess, nil
}
