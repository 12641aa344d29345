package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New constructs the session store named by cfg.Driver. Configuration problems
// (unknown driver, missing collaborator, unreachable backend) surface here,
// never deferred to first use.
func New[Data any](ctx context.Context, cfg Config, opts ...Option) (Store[Data], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryStore[Data](cfg.MaxEntries, o.logger), nil

	case DriverRedis:
		client := o.redisClient
		if client == nil {
			if cfg.RedisURL == "" {
				return nil, ErrMissingRedisSource
			}
			redisOpts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return nil, errors.Join(ErrRedisConnect, err)
			}
			client = redis.NewClient(redisOpts)
			if err := client.Ping(ctx).Err(); err != nil {
				_ = client.Close()
				return nil, errors.Join(ErrRedisConnect, err)
			}
		}
		return NewRedisStore[Data](client, cfg.KeyPrefix, o.logger), nil

	case DriverResource:
		if o.resourceStore == nil {
			return nil, fmt.Errorf("%w: pass the %q resource via WithResourceStore (for MongoDB, mongo.Resource(db, %q) with a TTL index on expiresAt)",
				ErrMissingResourceStore, cfg.ResourceName, cfg.ResourceName)
		}
		store, err := NewResourceStore[Data](o.resourceStore, cfg.ResourceName, o.logger)
		if err != nil {
			return nil, err
		}
		// Probe the resource so a missing collection fails at construction
		// with an actionable error instead of on the first request.
		if _, err := store.Stats(ctx); err != nil {
			return nil, fmt.Errorf("%w: resource %q must exist with an expiresAt field (create it and retry): %w",
				ErrResourceUnavailable, cfg.ResourceName, err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: %q (supported: %s, %s, %s)",
			ErrUnknownDriver, cfg.Driver, DriverMemory, DriverRedis, DriverResource)
	}
}
