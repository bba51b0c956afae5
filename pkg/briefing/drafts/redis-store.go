package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"github.com/redis/go-redis/v9"
)

const (
	DEFAULT_KEY_PREFIX = "briefing-draft"
	DEFAULT_DRAFT_TTL  = 14 * 24 * time.Hour
)

type RedisConfig struct {
	Address   string `yaml:"address"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
	// TTL of a draft after its last change, e.g. "14d" or "336h"
	TTL string `yaml:"ttl"`
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DEFAULT_KEY_PREFIX
	}
	if ttl <= 0 {
		ttl = DEFAULT_DRAFT_TTL
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(officeID string, id string) string {
	return s.prefix + ":" + officeID + ":" + id
}

func (s *RedisStore) Save(ctx context.Context, draft *Draft) error {
	draft.UpdatedAt = time.Now().Unix()
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(draft.OfficeID, draft.ID), data, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, officeID string, id string) (*Draft, error) {
	data, err := s.client.Get(ctx, s.key(officeID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	if draft.Answers == nil {
		draft.Answers = types.Answers{}
	}
	return &draft, nil
}

func (s *RedisStore) Delete(ctx context.Context, officeID string, id string) error {
	return s.client.Del(ctx, s.key(officeID, id)).Err()
}
