package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON encoded values in Redis under an optional key namespace.
type Cache struct {
	client    *redis.Client
	namespace string
}

type Options struct {
	Address   string
	Password  string
	DB        int
	Namespace string
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithPassword(pass string) Option {
	return func(o *Options) {
		o.Password = pass
	}
}

func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// WithNamespace prefixes every key with ns and a colon, so several deployments can
// share one Redis database.
func WithNamespace(ns string) Option {
	return func(o *Options) {
		o.Namespace = ns
	}
}

func New(ctx context.Context, opts ...Option) (*Cache, error) {
	options := &Options{Address: "localhost:6379"}
	for _, opt := range opts {
		opt(options)
	}

	c, err := Connect(ctx, redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	}))
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", options.Address, err)
	}
	c.namespace = options.Namespace
	return c, nil
}

// Connect wraps an existing client after checking it is reachable.
func Connect(ctx context.Context, client *redis.Client) (*Cache, error) {
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Cache{client: client}, nil
}

func (c *Cache) key(k string) string {
	if c.namespace == "" {
		return k
	}
	return c.namespace + ":" + k
}

// Get decodes the value at key into dest. A missing key returns redis.Nil unwrapped.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", key, err)
	}
	return c.client.Set(ctx, c.key(key), data, expiration).Err()
}

// Delete removes keys. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.client.Del(ctx, full...).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
