// Package otp issues and verifies one-time login codes.
package otp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoRecord = errors.New("no otp on record")

// Record is what the store keeps for an identifier between issue and verify.
type Record struct {
	Code      string
	Role      string
	ExpiresAt time.Time
}

type Store interface {
	Save(ctx context.Context, identifier string, rec Record, ttl time.Duration) error
	// Consume compares code and deletes the record on match in one step.
	Consume(ctx context.Context, identifier, code string) (*Record, error)
}

// consumeScript returns {role, expires_at} on a match and deletes the key.
// A mismatch bumps the attempt counter and drops the record at the limit.
var consumeScript = redis.NewScript(`
local stored = redis.call("HGET", KEYS[1], "code")
if not stored then
  return false
end
if stored ~= ARGV[1] then
  local attempts = redis.call("HINCRBY", KEYS[1], "attempts", 1)
  if attempts >= tonumber(ARGV[2]) then
    redis.call("DEL", KEYS[1])
  end
  return false
end
local fields = redis.call("HMGET", KEYS[1], "role", "expires_at")
redis.call("DEL", KEYS[1])
return fields
`)

type RedisStore struct {
	client      *redis.Client
	maxAttempts int
}

func NewRedisStore(client *redis.Client, maxAttempts int) *RedisStore {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &RedisStore{client: client, maxAttempts: maxAttempts}
}

func key(identifier string) string {
	return "otp:" + identifier
}

func (s *RedisStore) Save(ctx context.Context, identifier string, rec Record, ttl time.Duration) error {
	k := key(identifier)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k,
		"code", rec.Code,
		"role", rec.Role,
		"expires_at", rec.ExpiresAt.Unix(),
		"attempts", 0,
	)
	pipe.Expire(ctx, k, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, identifier, code string) (*Record, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{key(identifier)}, code, s.maxAttempts).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume otp: %w", err)
	}
	if len(res) != 2 {
		return nil, ErrNoRecord
	}

	role, _ := res[0].(string)
	rawExpiry, _ := res[1].(string)
	unix, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt otp expiry %q: %w", rawExpiry, err)
	}
	return &Record{Code: code, Role: role, ExpiresAt: time.Unix(unix, 0)}, nil
}
