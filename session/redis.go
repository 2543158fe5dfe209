// Copyright (c) 2025 BVK Chaitanya

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bvk/papertrade/trade"
	"github.com/go-redis/redis/v8"
)

// RedisStore keeps pending trade selections in Redis so that they survive
// restarts. Selections expire after the configured TTL.
type RedisStore struct {
	client *redis.Client

	prefix string

	ttl time.Duration
}

type RedisOptions struct {
	// KeyPrefix is prepended to the user id in the Redis keys.
	KeyPrefix string

	// TTL is the expiry for pending selections. Zero keeps them forever.
	TTL time.Duration
}

func (v *RedisOptions) setDefaults() {
	if len(v.KeyPrefix) == 0 {
		v.KeyPrefix = "papertrade:session:"
	}
}

func NewRedisStore(client *redis.Client, opts *RedisOptions) *RedisStore {
	if opts == nil {
		opts = new(RedisOptions)
	}
	opts.setDefaults()
	return &RedisStore{
		client: client,
		prefix: opts.KeyPrefix,
		ttl:    opts.TTL,
	}
}

func (s *RedisStore) key(uid int64) string {
	return s.prefix + strconv.FormatInt(uid, 10)
}

func (s *RedisStore) Begin(ctx context.Context, uid int64, v *trade.Session) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(uid), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("could not save session for user %d: %w", uid, err)
	}
	return nil
}

func (s *RedisStore) Peek(ctx context.Context, uid int64) (*trade.Session, error) {
	data, err := s.client.Get(ctx, s.key(uid)).Bytes()
	return s.decode(uid, data, err)
}

// Take uses GETDEL so that only one of the concurrent callers receives the
// session.
func (s *RedisStore) Take(ctx context.Context, uid int64) (*trade.Session, error) {
	data, err := s.client.GetDel(ctx, s.key(uid)).Bytes()
	return s.decode(uid, data, err)
}

func (s *RedisStore) decode(uid int64, data []byte, err error) (*trade.Session, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read session for user %d: %w", uid, err)
	}
	v := new(trade.Session)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("could not decode session for user %d: %w", uid, err)
	}
	return v, nil
}
