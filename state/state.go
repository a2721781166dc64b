// Package state keeps in-progress conversations between chat events.
package state

import (
	"context"
	"database/sql"
	"time"

	"github.com/babushkian/OTBot/db"
	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Store loads and saves conversations by key. Load returns nil, nil when nothing is
// stored under the key.
type Store interface {
	Load(ctx context.Context, key string) (*model.Conversation, error)
	Save(ctx context.Context, conv *model.Conversation) error
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Backend: "memory", "redis" or "sqlite".
func New(ctx context.Context, cfg model.StateConfig, conn *sql.DB) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(ctx, cfg.TTL), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, errors.Wrapf(err, "connect to redis at %s", cfg.RedisAddr)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis conversation store connected")
		return NewRedisStore(client, cfg.TTL), nil
	case "sqlite", "":
		return &expiring{Store: db.NewConversationStore(conn), ttl: cfg.TTL, now: time.Now}, nil
	}
	return nil, errors.Newf("unknown state backend %q", cfg.Backend)
}

func expired(conv *model.Conversation, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(conv.UpdatedAt) > ttl
}

// expiring hides conversations idle for longer than ttl from a store that does not
// expire entries on its own.
type expiring struct {
	Store
	ttl time.Duration
	now func() time.Time
}

func (e *expiring) Load(ctx context.Context, key string) (*model.Conversation, error) {
	conv, err := e.Store.Load(ctx, key)
	if err != nil || conv == nil {
		return conv, err
	}
	if expired(conv, e.ttl, e.now()) {
		log.Debug().Str("key", key).Msg("dropping stale conversation")
		return nil, e.Store.Delete(ctx, key)
	}
	return conv, nil
}
