package session

import "errors"

var (
	// ErrUnknownDriver is returned by the factory for an unrecognized driver name.
	ErrUnknownDriver = errors.New("unknown session driver")

	// ErrMissingRedisSource is returned when the redis driver is selected
	// without a client or connection URL.
	ErrMissingRedisSource = errors.New("redis driver requires a client or connection URL")

	// ErrRedisConnect is returned when a redis client cannot be constructed
	// from the configured connection URL.
	ErrRedisConnect = errors.New("failed to connect to redis")

	// ErrMissingResourceStore is returned when the resource driver is selected
	// without a persistence handle.
	ErrMissingResourceStore = errors.New("resource driver requires a persistence handle")

	// ErrResourceUnavailable is returned when the configured backing resource
	// cannot be reached at construction time.
	ErrResourceUnavailable = errors.New("session resource is not available")

	// ErrEncodeSession is returned when session data cannot be serialized.
	ErrEncodeSession = errors.New("failed to encode session data")

	// ErrDecodeSession is returned when stored session data cannot be decoded.
	ErrDecodeSession = errors.New("failed to decode session data")
)
