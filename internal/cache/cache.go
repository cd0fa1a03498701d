// Package cache stores rendered API responses in Redis, keyed by the
// SHA-256 of the program text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Cache is a Redis-backed response cache.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

// WithTTL sets the expiration of cached entries. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New creates a cache connected to the Redis server at address.
func New(address string, opts ...Option) *Cache {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: address}), opts...)
}

// NewFromClient creates a cache from an existing client. Caches sharing a
// client should use distinct prefixes.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: "tetr:",
		ttl:    time.Hour,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Client returns the underlying Redis client.
func (c *Cache) Client() *backend.Client {
	return c.client
}

// Key returns the Redis key of a program.
func (c *Cache) Key(program string) string {
	sum := sha256.Sum256([]byte(program))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached payload of a program. A miss is not an error.
func (c *Cache) Get(ctx context.Context, program string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.Key(program)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: cannot get: %w", err)
	}
	return val, true, nil
}

// Put stores the payload of a program.
func (c *Cache) Put(ctx context.Context, program string, payload []byte) error {
	if err := c.client.Set(ctx, c.Key(program), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: cannot put: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: cannot reach redis: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
