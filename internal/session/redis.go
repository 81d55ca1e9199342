package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/tradeops/config"
)

// Redis backs sessions with a redis instance so multiple replicas share
// one admission state. Expiry rides on redis key TTLs; the request window
// is a sorted set scored by unix nanos and pruned by score on read, which
// matches the in-memory store's lazy semantics.
type Redis struct {
	client *redis.Client

	ttl    time.Duration
	limit  int
	window time.Duration
}

func NewRedisStore(client *redis.Client, cfg config.SessionConfig) *Redis {
	return &Redis{
		client: client,
		ttl:    cfg.TTL,
		limit:  cfg.RateLimit,
		window: cfg.RateWindow,
	}
}

func sessionKey(id string) string { return "tradeops:session:" + id }
func windowKey(id string) string  { return "tradeops:window:" + id }

func (s *Redis) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(id), time.Now().Unix(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return id, nil
}

func (s *Redis) Validate(ctx context.Context, id string) bool {
	// redis deletes expired keys itself, so existence is validity
	n, err := s.client.Exists(ctx, sessionKey(id)).Result()
	return err == nil && n > 0
}

func (s *Redis) RecordRequest(ctx context.Context, id string) {
	now := time.Now()
	member := redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()}
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, windowKey(id), member)
	pipe.Expire(ctx, windowKey(id), s.ttl)
	_, _ = pipe.Exec(ctx)
}

func (s *Redis) IsRateLimited(ctx context.Context, id string) bool {
	if !s.Validate(ctx, id) {
		return true
	}
	cutoff := time.Now().Add(-s.window).UnixNano()
	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, windowKey(id), "-inf", fmt.Sprintf("%d", cutoff))
	card := pipe.ZCard(ctx, windowKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		// fail closed: an unreachable store must not open the gate
		return true
	}
	return card.Val() >= int64(s.limit)
}

// admitScript prunes, checks and records in one script invocation; redis
// runs scripts atomically, so two replicas admitting the same session
// cannot both see budget.
var admitScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

func (s *Redis) Admit(ctx context.Context, id string) bool {
	if !s.Validate(ctx, id) {
		return false
	}
	now := time.Now()
	cutoff := now.Add(-s.window).UnixNano()
	res, err := admitScript.Run(ctx, s.client, []string{windowKey(id)},
		cutoff, s.limit, now.UnixNano(), s.ttl.Milliseconds()).Int()
	if err != nil {
		// fail closed, same as IsRateLimited
		return false
	}
	return res == 1
}
