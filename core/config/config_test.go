package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionkit/bastion/core/config"
)

type testConfig struct {
	Name     string        `env:"CONFIG_TEST_NAME" envDefault:"fallback"`
	Interval time.Duration `env:"CONFIG_TEST_INTERVAL" envDefault:"30s"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when env is unset", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "fallback", cfg.Name)
		assert.Equal(t, 30*time.Second, cfg.Interval)
	})

	t.Run("returns cached value on repeated load", func(t *testing.T) {
		var first testConfig
		require.NoError(t, config.Load(&first))

		// Mutating the first copy must not affect later loads.
		first.Name = "mutated"

		var second testConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "fallback", second.Name)
	})

	t.Run("rejects non-pointer target", func(t *testing.T) {
		err := config.Load(testConfig{})
		assert.ErrorIs(t, err, config.ErrNotStructPointer)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		assert.Error(t, config.Load(&cfg))
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on invalid target", func(t *testing.T) {
		assert.Panics(t, func() {
			config.MustLoad(nil)
		})
	})
}
