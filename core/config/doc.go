// Package config provides type-safe environment variable loading with caching.
// Each configuration type is loaded once per process and cached for subsequent
// calls; a .env file is loaded automatically on first use.
//
// Parsing is delegated to the caarlos0/env library, so configuration structs
// declare their environment mapping with `env` tags:
//
//	type FailbanConfig struct {
//		MaxViolations int           `env:"FAILBAN_MAX_VIOLATIONS" envDefault:"3"`
//		BanDuration   time.Duration `env:"FAILBAN_BAN_DURATION" envDefault:"24h"`
//	}
//
//	var cfg FailbanConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// MustLoad panics on failure, which is appropriate during startup where a
// missing required variable should stop the process.
package config
