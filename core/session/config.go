package session

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/bastionkit/bastion/core/resource"
)

// Driver names the session store backend.
type Driver string

const (
	// DriverMemory is the transient in-process store.
	DriverMemory Driver = "memory"
	// DriverRedis is the external key-value cache store.
	DriverRedis Driver = "redis"
	// DriverResource is the durable document-resource store.
	DriverResource Driver = "resource"
)

// Config holds session store configuration. Only the fields relevant to the
// selected driver are consulted.
type Config struct {
	Driver Driver `env:"SESSION_DRIVER" envDefault:"memory"`

	// Memory driver.
	MaxEntries int `env:"SESSION_MAX_ENTRIES" envDefault:"10000"`

	// Redis driver. Ignored when a client is supplied via WithRedisClient.
	RedisURL  string `env:"SESSION_REDIS_URL"`
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"session:"`

	// Resource driver. The persistence handle itself is supplied via
	// WithResourceStore; the name appears in logs and errors.
	ResourceName string `env:"SESSION_RESOURCE_NAME" envDefault:"oidc_sessions"`
}

type options struct {
	logger        *slog.Logger
	redisClient   *redis.Client
	resourceStore resource.Store
}

// Option configures the session store factory.
type Option func(*options)

// WithLogger sets the logger passed to the constructed driver.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRedisClient supplies an already-connected redis client, taking
// precedence over Config.RedisURL.
func WithRedisClient(client *redis.Client) Option {
	return func(o *options) {
		o.redisClient = client
	}
}

// WithResourceStore supplies the durable persistence handle required by the
// resource driver.
func WithResourceStore(store resource.Store) Option {
	return func(o *options) {
		o.resourceStore = store
	}
}
