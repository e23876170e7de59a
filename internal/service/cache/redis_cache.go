package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	cli    *redis.Client
	prefix string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	DialTimeout time.Duration
}

func NewRedisCache(cfg RedisConfig) *RedisCache {
	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
		opts.ReadTimeout = cfg.DialTimeout
		opts.WriteTimeout = cfg.DialTimeout
	}
	return &RedisCache{cli: redis.NewClient(opts), prefix: cfg.Prefix}
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.cli.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.cli.Close()
}

func (r *RedisCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.cli.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.cli.Set(ctx, r.prefix+key, value, ttl).Err()
}

var _ BytesCache = (*RedisCache)(nil)
