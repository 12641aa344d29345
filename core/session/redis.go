package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bastionkit/bastion/core/logger"
)

const defaultKeyPrefix = "session:"

// redisPayload is the JSON shape persisted under each session key. Expiry is
// not stored in the payload; Redis key TTL is authoritative and is read back
// on Get.
type redisPayload[Data any] struct {
	UserID    string    `json:"user_id"`
	Data      Data      `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisStore is a session store backed by an external Redis service.
// TTL uses native expiring-key semantics; memory pressure is delegated to
// Redis' own limits. Transport failures on Get degrade to absent (logged),
// while Set and Destroy propagate errors since silently losing a write is
// worse than surfacing it.
type RedisStore[Data any] struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisStore creates a Redis-backed session store. An empty prefix falls
// back to "session:".
func NewRedisStore[Data any](client *redis.Client, prefix string, log *slog.Logger) *RedisStore[Data] {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &RedisStore[Data]{
		client: client,
		prefix: prefix,
		logger: log,
	}
}

func (rs *RedisStore[Data]) key(id string) string {
	return rs.prefix + id
}

func (rs *RedisStore[Data]) Get(ctx context.Context, id string) (*Session[Data], error) {
	key := rs.key(id)

	pipe := rs.client.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		// A broken cache must not break the request; the session is simply
		// not available right now.
		rs.logger.Error("session get failed, treating as absent",
			logger.Error(err), logger.ID("session_id", id))
		return nil, nil
	}

	raw, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		rs.logger.Error("session get failed, treating as absent",
			logger.Error(err), logger.ID("session_id", id))
		return nil, nil
	}

	var payload redisPayload[Data]
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Join(ErrDecodeSession, err)
	}

	sess := Session[Data]{
		ID:        id,
		UserID:    payload.UserID,
		Data:      payload.Data,
		CreatedAt: payload.CreatedAt,
	}
	if ttl := ttlCmd.Val(); ttl > 0 {
		sess.ExpiresAt = time.Now().Add(ttl)
	}

	return &sess, nil
}

func (rs *RedisStore[Data]) Set(ctx context.Context, id, userID string, data Data, ttl time.Duration) error {
	payload, err := json.Marshal(redisPayload[Data]{
		UserID:    userID,
		Data:      data,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return errors.Join(ErrEncodeSession, err)
	}

	return rs.client.Set(ctx, rs.key(id), payload, ttl).Err()
}

func (rs *RedisStore[Data]) Destroy(ctx context.Context, id string) error {
	// DEL of a missing key is a no-op in Redis, which gives idempotency for free.
	return rs.client.Del(ctx, rs.key(id)).Err()
}

func (rs *RedisStore[Data]) Touch(ctx context.Context, id string, ttl time.Duration) error {
	// EXPIRE is the native extend-expiry primitive: it leaves the value
	// untouched and reports false for missing keys, which is exactly the
	// no-op the contract requires.
	return rs.client.Expire(ctx, rs.key(id), ttl).Err()
}

func (rs *RedisStore[Data]) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Driver: string(DriverRedis)}

	iter := rs.client.Scan(ctx, 0, rs.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		stats.Entries++
	}
	if err := iter.Err(); err != nil {
		return Stats{Driver: string(DriverRedis)}, err
	}

	return stats, nil
}

func (rs *RedisStore[Data]) Clear(ctx context.Context) error {
	const batchSize = 100

	iter := rs.client.Scan(ctx, 0, rs.prefix+"*", 0).Iterator()
	batch := make([]string, 0, batchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == batchSize {
			if err := rs.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return rs.client.Del(ctx, batch...).Err()
	}

	return nil
}
