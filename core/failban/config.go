package failban

import (
	"log/slog"
	"time"

	"github.com/bastionkit/bastion/core/event"
	"github.com/bastionkit/bastion/core/resource"
	"github.com/bastionkit/bastion/pkg/scheduler"
)

// Config holds failban manager configuration.
type Config struct {
	Enabled bool `env:"FAILBAN_ENABLED" envDefault:"true"`

	// MaxViolations is the ban threshold within the sliding window.
	MaxViolations   int           `env:"FAILBAN_MAX_VIOLATIONS" envDefault:"3"`
	ViolationWindow time.Duration `env:"FAILBAN_VIOLATION_WINDOW" envDefault:"1h"`
	BanDuration     time.Duration `env:"FAILBAN_BAN_DURATION" envDefault:"24h"`

	// Whitelist entries can never be banned; defaults to loopback addresses.
	Whitelist []string `env:"FAILBAN_WHITELIST" envSeparator:"," envDefault:"127.0.0.1,::1"`
	// Blacklist entries are permanently banned and never materialize records.
	Blacklist []string `env:"FAILBAN_BLACKLIST" envSeparator:","`

	PersistViolations bool `env:"FAILBAN_PERSIST_VIOLATIONS" envDefault:"true"`

	// FailOpen controls the enforcement decision when an internal collaborator
	// fails: true allows the request (default), false blocks it.
	FailOpen bool `env:"FAILBAN_FAIL_OPEN" envDefault:"true"`

	// EvictionInterval is the cadence of the cache sweep job.
	EvictionInterval time.Duration `env:"FAILBAN_EVICTION_INTERVAL" envDefault:"1m"`

	Geo GeoConfig `envPrefix:"FAILBAN_GEO_"`
}

// GeoConfig holds the country-gate configuration.
type GeoConfig struct {
	Enabled bool `env:"ENABLED"`
	// DatabasePath points at a MaxMind database for the bundled resolver;
	// unused when a custom Resolver is injected.
	DatabasePath     string   `env:"DATABASE_PATH"`
	AllowedCountries []string `env:"ALLOWED_COUNTRIES" envSeparator:","`
	BlockedCountries []string `env:"BLOCKED_COUNTRIES" envSeparator:","`
	// BlockUnknown blocks IPs whose country cannot be resolved.
	BlockUnknown bool `env:"BLOCK_UNKNOWN"`
	CacheResults bool `env:"CACHE_RESULTS" envDefault:"true"`
	CacheSize    int  `env:"CACHE_SIZE" envDefault:"1000"`
}

// DefaultConfig returns the documented defaults. Tests and programmatic
// callers start from here instead of relying on env parsing.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		MaxViolations:     3,
		ViolationWindow:   time.Hour,
		BanDuration:       24 * time.Hour,
		Whitelist:         []string{"127.0.0.1", "::1"},
		PersistViolations: true,
		FailOpen:          true,
		EvictionInterval:  time.Minute,
		Geo: GeoConfig{
			CacheResults: true,
			CacheSize:    1000,
		},
	}
}

type managerOptions struct {
	logger     *slog.Logger
	bans       resource.Store
	violations resource.Store
	publisher  *event.Publisher
	resolver   Resolver
	scheduler  *scheduler.Scheduler
}

// Option configures a Manager.
type Option func(*managerOptions)

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *managerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBanStore supplies the durable store for ban records. Without it the
// in-memory cache is the only (best-effort) record of bans.
func WithBanStore(s resource.Store) Option {
	return func(o *managerOptions) {
		o.bans = s
	}
}

// WithViolationStore supplies the durable store for violation records, used
// for sliding-window counting when PersistViolations is enabled.
func WithViolationStore(s resource.Store) Option {
	return func(o *managerOptions) {
		o.violations = s
	}
}

// WithPublisher sets the event publisher for security notifications.
func WithPublisher(p *event.Publisher) Option {
	return func(o *managerOptions) {
		o.publisher = p
	}
}

// WithResolver injects the GeoIP lookup collaborator for the country gate.
func WithResolver(r Resolver) Option {
	return func(o *managerOptions) {
		o.resolver = r
	}
}

// WithScheduler injects the scheduler the eviction job is registered on.
// Without a scheduler, expired cache entries are only reclaimed lazily.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(o *managerOptions) {
		o.scheduler = s
	}
}
