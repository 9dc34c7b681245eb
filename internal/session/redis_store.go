package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/auth"
)

const DefaultPrefix = "session:"

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store. Every record is
// written with ttl and removed by Redis once it elapses.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: DefaultPrefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) key(token string) string {
	return r.prefix + token
}

func (r *RedisStore) Save(ctx context.Context, user auth.User) (string, error) {
	data, err := encodeUser(user)
	if err != nil {
		return "", apperr.Serialization("encoding session", err)
	}

	token := NewToken()
	if err := r.client.Set(ctx, r.key(token), data, r.ttl).Err(); err != nil {
		return "", apperr.Connection("writing session", err)
	}

	return token, nil
}

func (r *RedisStore) Get(ctx context.Context, token string) (auth.User, error) {
	val, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return auth.User{}, apperr.NotFound("session")
	}
	if err != nil {
		return auth.User{}, apperr.Connection("reading session", err)
	}

	user, err := decodeUser(val)
	if err != nil {
		return auth.User{}, apperr.Serialization("decoding session", err)
	}

	return user, nil
}

// Delete removes the session. Deleting an unknown token is not an error.
func (r *RedisStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return apperr.Connection("deleting session", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
