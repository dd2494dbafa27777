// Package tokenstore keeps short-lived secrets (password reset tokens, OTP codes)
// in Redis so every API instance sees the same validity window.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

// ErrMissing is returned when a key was never stored, already consumed, or expired.
var ErrMissing = errors.New("token missing or expired")

func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("tokenstore.NewClient: ping: %w", err)
	}
	return rdb, nil
}

// Store namespaces keys so several token kinds can share one Redis database.
type Store struct {
	client    *redis.Client
	namespace string
}

func New(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) key(k string) string {
	return s.namespace + ":" + k
}

func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("Put: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("Get: %w", ErrMissing)
	}
	if err != nil {
		return "", fmt.Errorf("Get: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return v, nil
}

// Take returns the value and its remaining lifetime and deletes the key in one
// MULTI, so a token can be redeemed at most once across instances. The
// lifetime is zero when the key had no expiry.
func (s *Store) Take(ctx context.Context, key string) (string, time.Duration, error) {
	var (
		ttl *redis.DurationCmd
		val *redis.StringCmd
	)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		ttl = p.PTTL(ctx, s.key(key))
		val = p.GetDel(ctx, s.key(key))
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return "", 0, fmt.Errorf("Take: %w", ErrMissing)
	}
	if err != nil {
		return "", 0, fmt.Errorf("Take: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return val.Val(), max(ttl.Val(), 0), nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("Delete: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Incr bumps a counter and returns its new value. The first increment starts
// the ttl; later ones leave it running.
func (s *Store) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var n *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		n = p.Incr(ctx, s.key(key))
		p.ExpireNX(ctx, s.key(key), ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("Incr: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return n.Val(), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
