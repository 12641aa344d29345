package failban

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bastionkit/bastion/core/event"
	"github.com/bastionkit/bastion/core/logger"
	"github.com/bastionkit/bastion/core/resource"
	"github.com/bastionkit/bastion/pkg/scheduler"
)

// evictionJobName is the scheduler job handle retained for StopJob on Close.
const evictionJobName = "failban:evict"

// Decision is the outward-facing result of an enforcement check. It carries
// only the binary outcome and a documented reason code, never internal error
// detail.
type Decision struct {
	Allowed bool
	Reason  string // empty when allowed
	Country string // set when the country gate decided
}

// Manager tracks violations, issues bans, and answers the hot-path banned
// check from its in-memory cache. Construct with New; safe for concurrent use.
type Manager struct {
	cfg       Config
	whitelist map[string]struct{}
	blacklist map[string]struct{}

	cache      *banCache
	violations *violationLog
	geoCache   *geoCache

	banStore       resource.Store
	violationStore resource.Store
	publisher      *event.Publisher
	resolver       Resolver
	sched          *scheduler.Scheduler
	logger         *slog.Logger
}

// Stats reports manager observability counters.
type Stats struct {
	Enabled     bool `json:"enabled"`
	CachedBans  int  `json:"cached_bans"`
	Whitelisted int  `json:"whitelisted"`
	Blacklisted int  `json:"blacklisted"`
}

// New creates a failban manager and, when a scheduler is injected, registers
// the periodic cache-eviction job on it.
func New(cfg Config, opts ...Option) (*Manager, error) {
	o := managerOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.MaxViolations <= 0 {
		cfg.MaxViolations = 3
	}
	if cfg.ViolationWindow <= 0 {
		cfg.ViolationWindow = time.Hour
	}
	if cfg.BanDuration <= 0 {
		cfg.BanDuration = 24 * time.Hour
	}
	if cfg.EvictionInterval <= 0 {
		cfg.EvictionInterval = time.Minute
	}
	if cfg.Whitelist == nil {
		cfg.Whitelist = []string{"127.0.0.1", "::1"}
	}

	m := &Manager{
		cfg:            cfg,
		whitelist:      toSet(cfg.Whitelist),
		blacklist:      toSet(cfg.Blacklist),
		cache:          newBanCache(),
		violations:     newViolationLog(),
		banStore:       o.bans,
		violationStore: o.violations,
		publisher:      o.publisher,
		resolver:       o.resolver,
		sched:          o.scheduler,
		logger:         o.logger,
	}

	if cfg.Geo.CacheResults {
		m.geoCache = newGeoCache(cfg.Geo.CacheSize)
	}

	if m.sched != nil && cfg.Enabled {
		if err := m.sched.AddJob(evictionJobName, cfg.EvictionInterval, func(ctx context.Context) {
			m.EvictExpired(ctx)
		}); err != nil {
			return nil, fmt.Errorf("failed to register eviction job: %w", err)
		}
	}

	return m, nil
}

// Close deregisters the eviction job from the shared scheduler so no timer
// outlives the manager. The scheduler itself keeps running.
func (m *Manager) Close() error {
	if m.sched == nil {
		return nil
	}
	if err := m.sched.StopJob(evictionJobName); err != nil && !errors.Is(err, scheduler.ErrJobNotFound) {
		return err
	}
	return nil
}

// Hydrate loads all unexpired durable ban records into the cache. Call once
// on startup, before serving traffic, so bans survive restarts.
func (m *Manager) Hydrate(ctx context.Context) error {
	if m.banStore == nil {
		return nil
	}

	recs, err := m.banStore.List(ctx, resource.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to load ban records: %w", err)
	}

	loaded := 0
	for _, rec := range recs {
		ban := banFromRecord(rec)
		if ban.IP == "" || ban.IsExpired() {
			continue
		}
		m.cache.set(ban.IP, banEntry{
			ExpiresAt:  ban.ExpiresAt,
			Reason:     ban.Reason,
			Violations: ban.ViolationCount,
		})
		loaded++
	}

	m.logger.Info("ban cache hydrated", logger.Count("bans", loaded))
	return nil
}

// RecordViolation appends a violation and issues a ban when the rolling count
// within the configured window reaches the threshold. Whitelisted IPs are not
// recorded. Persistence failures degrade to in-memory counting, never to a
// dropped evaluation.
func (m *Manager) RecordViolation(ctx context.Context, v Violation) error {
	if !m.cfg.Enabled {
		return nil
	}
	if v.IP == "" {
		return ErrMissingIP
	}
	if m.isWhitelisted(v.IP) {
		return nil
	}

	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now()
	}

	// The in-memory log is always maintained: it is the best-effort record
	// when persistence is absent or down.
	memCount := m.violations.add(v.IP, v.Timestamp, m.cfg.ViolationWindow)

	persisted := false
	if m.cfg.PersistViolations && m.violationStore != nil {
		if _, err := m.violationStore.Insert(ctx, v.toRecord()); err != nil {
			m.logger.Error("failed to persist violation, continuing with cache-only enforcement",
				logger.Error(err), logger.ClientIP(v.IP), logger.Type(v.Type))
		} else {
			persisted = true
		}
	}

	m.publish(ctx, ViolationEvent{
		IP:        v.IP,
		Type:      v.Type,
		Timestamp: v.Timestamp,
		Path:      v.Path,
		UserAgent: v.UserAgent,
	})

	count := memCount
	if persisted {
		if n, err := m.countRecent(ctx, v.IP, v.Timestamp); err != nil {
			m.logger.Error("violation count query failed, using in-memory count",
				logger.Error(err), logger.ClientIP(v.IP))
		} else {
			count = n
		}
	}

	if count >= m.cfg.MaxViolations {
		// An active ban is not re-issued on further violations; the existing
		// expiry stands until the sweep or an explicit unban clears it.
		if entry, banned := m.cache.get(v.IP); banned && !time.Now().After(entry.ExpiresAt) {
			return nil
		}
		return m.ban(ctx, v.IP, ReasonRateLimit, count, map[string]any{"trigger": v.Type})
	}

	return nil
}

// Ban writes a durable ban record, updates the enforcement cache, and
// notifies observers. Banning a whitelisted IP is a logged no-op.
func (m *Manager) Ban(ctx context.Context, ip, reason string, metadata map[string]any) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}
	if ip == "" {
		return ErrMissingIP
	}
	if m.isWhitelisted(ip) {
		m.logger.Warn("refusing to ban whitelisted ip", logger.ClientIP(ip))
		return nil
	}
	if reason == "" {
		reason = ReasonManual
	}

	return m.ban(ctx, ip, reason, m.violations.count(ip, time.Now(), m.cfg.ViolationWindow), metadata)
}

// ban applies the write-through: cache first so enforcement takes effect even
// if the durable write fails, then the authoritative record, then the event.
func (m *Manager) ban(ctx context.Context, ip, reason string, violations int, metadata map[string]any) error {
	now := time.Now()
	ban := Ban{
		IP:             ip,
		Reason:         reason,
		ViolationCount: violations,
		BannedAt:       now,
		ExpiresAt:      now.Add(m.cfg.BanDuration),
		Metadata:       metadata,
	}

	m.cache.set(ip, banEntry{
		ExpiresAt:  ban.ExpiresAt,
		Reason:     reason,
		Violations: violations,
	})
	m.violations.clear(ip)

	if m.banStore != nil {
		rec := ban.toRecord()
		_, err := m.banStore.Update(ctx, ip, rec)
		if errors.Is(err, resource.ErrNotFound) {
			_, err = m.banStore.Insert(ctx, rec)
		}
		if err != nil {
			// Enforcement-first: the cache entry stands even though the
			// durable write failed. Auditability is degraded, not enforcement.
			m.logger.Error("failed to persist ban record",
				logger.Error(err), logger.ClientIP(ip), logger.Key("reason", reason))
		}
	}

	m.logger.Info("ip banned",
		logger.ClientIP(ip), logger.Key("reason", reason),
		logger.Count("violations", violations), logger.Duration(m.cfg.BanDuration))

	m.publish(ctx, BannedEvent{
		IP:         ip,
		Reason:     reason,
		ExpiresAt:  ban.ExpiresAt,
		Duration:   m.cfg.BanDuration,
		Violations: violations,
	})

	return nil
}

// Unban lifts a ban. The cache entry is removed synchronously, so IsBanned
// reflects the unban immediately even if the durable delete is still in
// flight. Idempotent.
func (m *Manager) Unban(ctx context.Context, ip string) error {
	if ip == "" {
		return ErrMissingIP
	}

	m.cache.delete(ip)

	if m.banStore != nil {
		if err := m.banStore.Delete(ctx, ip); err != nil && !errors.Is(err, resource.ErrNotFound) {
			return fmt.Errorf("failed to delete ban record: %w", err)
		}
	}

	m.logger.Info("ip unbanned", logger.ClientIP(ip))
	m.publish(ctx, UnbannedEvent{IP: ip, Reason: ReasonManual})

	return nil
}

// IsBanned is the hot-path enforcement check: whitelist, blacklist, then the
// in-memory cache. It performs no I/O and never returns an error, so it can
// run on every request.
func (m *Manager) IsBanned(ip string) bool {
	if !m.cfg.Enabled {
		return false
	}
	if m.isWhitelisted(ip) {
		return false
	}
	if _, bad := m.blacklist[ip]; bad {
		return true
	}

	entry, ok := m.cache.get(ip)
	if !ok {
		return false
	}
	if time.Now().After(entry.ExpiresAt) {
		// Lazy eviction between sweeps; the sweep emits the unban event.
		m.cache.delete(ip)
		return false
	}

	return true
}

// GetBan is the authoritative durable lookup for admin and inspection use.
// Returns (nil, nil) when no active ban record exists, including for
// blacklisted IPs, which never materialize records.
func (m *Manager) GetBan(ctx context.Context, ip string) (*Ban, error) {
	if ip == "" {
		return nil, ErrMissingIP
	}
	if m.banStore == nil {
		return nil, nil
	}

	rec, err := m.banStore.Get(ctx, ip)
	if errors.Is(err, resource.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	ban := banFromRecord(rec)
	if ban.IsExpired() {
		return nil, nil
	}

	return &ban, nil
}

// Check combines the ban and country checks into one request-path decision.
func (m *Manager) Check(ctx context.Context, ip string) Decision {
	if !m.cfg.Enabled || m.isWhitelisted(ip) {
		return Decision{Allowed: true}
	}

	if _, bad := m.blacklist[ip]; bad {
		return Decision{Reason: ReasonBlacklisted}
	}

	if m.IsBanned(ip) {
		return Decision{Reason: ReasonRateLimit}
	}

	if blocked, country := m.CheckCountry(ctx, ip); blocked {
		return Decision{Reason: ReasonCountryRestricted, Country: country}
	}

	return Decision{Allowed: true}
}

// CheckCountry applies the GeoIP gate. Returns whether the IP is blocked on
// country grounds and the resolved country, if any. Never returns an error:
// with FailOpen (the default) a failing resolver blocks nobody, it only logs.
func (m *Manager) CheckCountry(ctx context.Context, ip string) (bool, string) {
	if !m.cfg.Enabled || !m.cfg.Geo.Enabled || m.resolver == nil {
		return false, ""
	}
	if m.isWhitelisted(ip) {
		return false, ""
	}

	country, err := m.resolveCountry(ctx, ip)
	if err != nil {
		m.logger.Error("geoip lookup failed", logger.Error(err), logger.ClientIP(ip))
		if !m.cfg.FailOpen {
			m.blockCountry(ctx, ip, country)
			return true, country
		}
		// Fail open still honors the unknown-country policy.
		if m.cfg.Geo.BlockUnknown {
			m.blockCountry(ctx, ip, country)
			return true, country
		}
		return false, country
	}

	if country == "" {
		if m.cfg.Geo.BlockUnknown {
			m.blockCountry(ctx, ip, country)
			return true, country
		}
		return false, country
	}

	if len(m.cfg.Geo.BlockedCountries) > 0 && containsCountry(m.cfg.Geo.BlockedCountries, country) {
		m.blockCountry(ctx, ip, country)
		return true, country
	}

	if len(m.cfg.Geo.AllowedCountries) > 0 && !containsCountry(m.cfg.Geo.AllowedCountries, country) {
		m.blockCountry(ctx, ip, country)
		return true, country
	}

	return false, country
}

// EvictExpired sweeps the ban cache, removing entries whose expiry has passed
// and emitting an "expired" unban event for each. This is the only reclaimer
// of stale cache memory; it never touches the durable store, whose TTL
// reclamation is delegated to an external purge mechanism.
func (m *Manager) EvictExpired(ctx context.Context) {
	expired := m.cache.sweep(time.Now())
	if len(expired) == 0 {
		return
	}

	for ip := range expired {
		m.publish(ctx, UnbannedEvent{IP: ip, Reason: ReasonExpired})
	}

	m.logger.Info("expired bans evicted", logger.Count("evicted", len(expired)))
}

// Stats returns current manager metrics. Thread-safe.
func (m *Manager) Stats() Stats {
	return Stats{
		Enabled:     m.cfg.Enabled,
		CachedBans:  m.cache.len(),
		Whitelisted: len(m.whitelist),
		Blacklisted: len(m.blacklist),
	}
}

func (m *Manager) isWhitelisted(ip string) bool {
	_, ok := m.whitelist[ip]
	return ok
}

// countRecent queries the durable store for violations within the sliding
// window. Older violations are excluded by the query, not deleted.
func (m *Manager) countRecent(ctx context.Context, ip string, now time.Time) (int, error) {
	recs, err := m.violationStore.Query(ctx, resource.Filter{
		"ip":        ip,
		"timestamp": resource.Filter{resource.OpGTE: now.Add(-m.cfg.ViolationWindow)},
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (m *Manager) blockCountry(ctx context.Context, ip, country string) {
	m.logger.Warn("request blocked on country grounds",
		logger.ClientIP(ip), logger.Key("country", country))
	m.publish(ctx, CountryBlockedEvent{IP: ip, Country: country})
}

// publish is fire-and-forget: a full buffer or failing observer must never
// affect a security decision.
func (m *Manager) publish(ctx context.Context, payload any) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, payload); err != nil {
		m.logger.Warn("security event dispatch failed", logger.Error(err))
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
