package geoip

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

var (
	ErrEmptyDatabasePath = errors.New("empty geoip database path")
	ErrInvalidIP         = errors.New("invalid ip address")
)

// Resolver answers country lookups from a local MaxMind database. Safe for
// concurrent use; Close releases the underlying reader.
type Resolver struct {
	reader *geoip2.Reader
}

// Open loads the MaxMind database at the given path.
func Open(path string) (*Resolver, error) {
	if path == "" {
		return nil, ErrEmptyDatabasePath
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}

	return &Resolver{reader: reader}, nil
}

// Country returns the ISO 3166-1 country code for the IP, or an empty string
// when the database has no match.
func (r *Resolver) Country(ctx context.Context, ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}

	record, err := r.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip lookup failed: %w", err)
	}

	return record.Country.IsoCode, nil
}

func (r *Resolver) Close() error {
	return r.reader.Close()
}
