package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/user/nextflix/internal/config"
	"github.com/user/nextflix/internal/model"
)

const (
	profileKeyPrefix = "profile:"
	maxTxRetries     = 5
)

var timeNow = func() time.Time { return time.Now().UTC() }

// NewRedis 连接 Redis
func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisProfileStore 每个用户一个 JSON 值，写入使用 WATCH/MULTI 乐观事务
type RedisProfileStore struct {
	client *redis.Client
}

func NewRedisProfileStore(client *redis.Client) *RedisProfileStore {
	return &RedisProfileStore{client: client}
}

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

func (s *RedisProfileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	data, err := s.client.Get(ctx, profileKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeProfile(data)
}

func (s *RedisProfileStore) Update(ctx context.Context, userID string, fn func(p *model.Profile) error) (*model.Profile, error) {
	key := profileKey(userID)
	var out *model.Profile

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		var p *model.Profile
		switch {
		case errors.Is(err, redis.Nil):
			p = model.NewProfile(userID)
			p.CreatedAt = timeNow()
		case err != nil:
			return err
		default:
			if p, err = decodeProfile(data); err != nil {
				return err
			}
		}

		if err := fn(p); err != nil {
			return err
		}
		p.UpdatedAt = timeNow()
		p.EnsureLists()

		enc, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, enc, 0)
			return nil
		})
		if err == nil {
			out = p
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("update profile %s: too many concurrent writers", userID)
}

func decodeProfile(data []byte) (*model.Profile, error) {
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.EnsureLists()
	return &p, nil
}
