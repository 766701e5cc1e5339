package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const redisKeyPrefix = "librarium:session:"

// RedisStore keeps sessions in Redis so multiple instances share them and
// expiry is handled by the server. Records are stored as JSON under
// librarium:session:<id> with the TTL on the key.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore with the given TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client must not be nil")
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Create(ctx context.Context, data Data) (string, error) {
	id := NewSessionID()

	if err := r.write(ctx, id, data); err != nil {
		return "", err
	}

	return id, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (Data, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Data{}, ErrSessionNotFound
		}

		return Data{}, fmt.Errorf("reading session from redis: %w", err)
	}

	var data Data
	if unmarshalErr := json.Unmarshal(raw, &data); unmarshalErr != nil {
		return Data{}, fmt.Errorf("unmarshaling session data: %w", unmarshalErr)
	}

	return data, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, data Data) error {
	exists, err := r.client.Exists(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("checking session in redis: %w", err)
	}

	if exists == 0 {
		return ErrSessionNotFound
	}

	return r.write(ctx, id, data)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session from redis: %w", err)
	}

	return nil
}

func (r *RedisStore) write(ctx context.Context, id string, data Data) error {
	raw, marshalErr := json.Marshal(data)
	if marshalErr != nil {
		return fmt.Errorf("marshaling session data: %w", marshalErr)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+id, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing session to redis: %w", err)
	}

	return nil
}
