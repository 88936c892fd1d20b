// internal/infra/redisstore/store.go
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var ErrLinkCodeNotFound = fmt.Errorf("link code not found or expired")
var ErrLocked = fmt.Errorf("lock held by another instance")

const linkCodePrefix = "tg:link:"

// LinkRequest is what a Telegram link code resolves to.
type LinkRequest struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

type Store struct {
	rdb *redis.Client
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) SaveLinkCode(ctx context.Context, code string, req LinkRequest, ttl time.Duration) error {
	return s.SetJSON(ctx, linkCodePrefix+code, req, ttl)
}

// ConsumeLinkCode resolves code and deletes it in the same round trip, so a code works once.
func (s *Store) ConsumeLinkCode(ctx context.Context, code string) (*LinkRequest, error) {
	raw, err := s.rdb.GetDel(ctx, linkCodePrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrLinkCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume link code: %w", err)
	}
	var req LinkRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, fmt.Errorf("decode link code: %w", err)
	}
	return &req, nil
}

func (s *Store) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes key into dest and reports whether the key existed.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Locker serialises a job across portal instances.
type Locker struct {
	client *redislock.Client
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{client: redislock.New(rdb)}
}

// WithLock runs fn while holding key. ErrLocked means another instance holds it and fn did not run.
func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	lock, err := l.client.Obtain(ctx, "lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrLocked
	}
	if err != nil {
		return fmt.Errorf("obtain lock %s: %w", key, err)
	}
	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}()
	return fn(ctx)
}
