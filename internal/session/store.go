// Package session implements guest session issuance and the per-session
// sliding-window rate limit that gates the analysis pipeline.
package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/tradeops/config"
)

// Store tracks anonymous guest sessions. The handler boundary calls
// Validate and then Admit; Admit counts the request it admits, so a
// session gets at most limit requests per window, never limit+1.
type Store interface {
	// Create issues a new opaque session token.
	Create(ctx context.Context) (string, error)
	// Validate reports whether the token names a live session. An expired
	// session is removed on the spot; there is no background sweep.
	Validate(ctx context.Context, id string) bool
	// Admit prunes the session's window, checks it against the limit and,
	// when budget remains, records the request — as one atomic step.
	// Splitting the check from the record would let two concurrent
	// requests both observe an empty window and both get through.
	// Unknown tokens are never admitted.
	Admit(ctx context.Context, id string) bool
	// RecordRequest appends the current time to the session's request
	// window without an admission check. Unknown tokens are a no-op.
	RecordRequest(ctx context.Context, id string)
	// IsRateLimited reports whether the session has exhausted its window,
	// without recording anything. Unknown tokens are always limited.
	IsRateLimited(ctx context.Context, id string) bool
}

type StoreType string

const (
	MemoryStore StoreType = "memory"
	RedisStore  StoreType = "redis"
)

// NewStore builds a session store from configuration.
func NewStore(cfg config.SessionConfig, redisCfg config.RedisConfig) (Store, error) {
	switch StoreType(cfg.Store) {
	case MemoryStore:
		return NewInMemoryStore(cfg), nil
	case RedisStore:
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		return NewRedisStore(client, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", cfg.Store)
	}
}
