package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/babushkian/OTBot/model"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "otbot:conversation:"

// RedisStore keeps conversations as JSON values that expire after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, key string) (*model.Conversation, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, model.Persistence(err, "load conversation")
	}
	var conv model.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, model.Persistence(err, "decode conversation")
	}
	return &conv, nil
}

func (s *RedisStore) Save(ctx context.Context, conv *model.Conversation) error {
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = time.Now()
	}
	raw, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return model.Persistence(s.client.Set(ctx, redisKeyPrefix+conv.Key(), raw, s.ttl).Err(), "save conversation")
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return model.Persistence(s.client.Del(ctx, redisKeyPrefix+key).Err(), "delete conversation")
}
