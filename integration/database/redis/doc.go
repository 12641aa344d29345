// Package redis provides Redis client initialization and health checking.
//
// Connect validates the connection URL, dials with retry to absorb transient
// network failures, and verifies connectivity with a ping before returning
// the client. Healthcheck returns a probe function suitable for readiness
// endpoints.
//
// Configuration is loaded from environment variables via the Config struct:
//
//	REDIS_URL              (default: redis://localhost:6379/0)
//	REDIS_RETRY_ATTEMPTS   (default: 3)
//	REDIS_RETRY_INTERVAL   (default: 5s)
//	REDIS_CONNECT_TIMEOUT  (default: 30s)
//
// Both redis:// and rediss:// (TLS) URL schemes are supported.
//
// Usage:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	healthCheck := redis.Healthcheck(client)
package redis
