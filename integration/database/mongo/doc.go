// Package mongo provides MongoDB client initialization, health checking, and
// a document-resource adapter over a collection.
//
// New and NewWithDatabase wrap the official driver with application-level
// retry logic so cold starts and brief network interruptions do not fail
// application startup. Healthcheck returns a probe function for readiness
// endpoints.
//
// Resource adapts a collection to the resource.Store interface, so packages
// persisting through resource.Store (sessions, bans, lifecycle records) can
// run on MongoDB without knowing about the driver. EnsureTTLIndex installs a
// TTL index so MongoDB purges expired documents itself.
//
// Configuration is loaded from environment variables via the Config struct:
//
//	MONGODB_URL                 (required)
//	MONGODB_CONNECT_TIMEOUT     (default: 10s)
//	MONGODB_MAX_POOL_SIZE       (default: 100)
//	MONGODB_MIN_POOL_SIZE       (default: 1)
//	MONGODB_MAX_CONN_IDLE_TIME  (default: 300s)
//	MONGODB_RETRY_WRITES        (default: true)
//	MONGODB_RETRY_READS         (default: true)
//	MONGODB_RETRY_ATTEMPTS      (default: 3)
//	MONGODB_RETRY_INTERVAL      (default: 5s)
//
// Usage:
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "identity")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sessions := mongo.Resource(db, "oidc_sessions")
//	if err := mongo.EnsureTTLIndex(ctx, db.Collection("oidc_sessions"), "expiresAt"); err != nil {
//		log.Fatal(err)
//	}
package mongo
