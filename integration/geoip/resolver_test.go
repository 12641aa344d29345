package geoip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bastionkit/bastion/integration/geoip"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("rejects an empty path", func(t *testing.T) {
		t.Parallel()

		_, err := geoip.Open("")
		assert.ErrorIs(t, err, geoip.ErrEmptyDatabasePath)
	})

	t.Run("fails on a missing database file", func(t *testing.T) {
		t.Parallel()

		_, err := geoip.Open("testdata/does-not-exist.mmdb")
		assert.Error(t, err)
	})
}
