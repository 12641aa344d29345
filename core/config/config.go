package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNotStructPointer is returned when the target is not a non-nil pointer to a struct.
var ErrNotStructPointer = errors.New("config target must be a non-nil pointer to a struct")

var (
	dotenvOnce sync.Once

	cacheMu sync.RWMutex
	cache   = make(map[reflect.Type]reflect.Value)
)

// Load parses environment variables into the target struct. The first call for
// a given struct type reads the environment (loading a .env file if present);
// subsequent calls for the same type return the cached value.
func Load(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}

	t := v.Elem().Type()

	cacheMu.RLock()
	cached, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		v.Elem().Set(cached)
		return nil
	}

	// Missing .env is not an error; real environments set variables directly.
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", t.Name(), err)
	}

	// Store a detached copy so later caller mutations don't poison the cache.
	snapshot := reflect.New(t).Elem()
	snapshot.Set(v.Elem())

	cacheMu.Lock()
	cache[t] = snapshot
	cacheMu.Unlock()

	return nil
}

// MustLoad is like Load but panics on failure. Intended for application startup.
func MustLoad(target any) {
	if err := Load(target); err != nil {
		panic(err)
	}
}
