// Package cache provides the Redis-backed identity cache that lets token
// resolution skip the user store inside a bounded staleness window.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/photoshare/identity/domain"
)

// ErrMiss indicates no usable entry exists for the key.
var ErrMiss = errors.New("cache: miss")

// DefaultTTL bounds how stale a cached identity may get.
const DefaultTTL = 900 * time.Second

const snapshotVersion = 1

// snapshot is the versioned wire form of a cached identity. Only the
// public-facing fields are serialized; the password hash and renewal
// credential never enter the cache.
type snapshot struct {
	Version  int    `json:"v"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
	Active   bool   `json:"active"`
}

// IdentityCache stores identity snapshots in Redis under `user:<email>`.
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Options configures the Redis connection and entry lifetime.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to Redis and returns an IdentityCache. A zero TTL falls back
// to DefaultTTL.
func New(ctx context.Context, opts Options) (*IdentityCache, error) {
	client := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewWithClient(client, opts.TTL), nil
}

// NewWithClient wraps an existing Redis client, mainly for tests and shared
// connection setups.
func NewWithClient(client *redis.Client, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IdentityCache{client: client, ttl: ttl}
}

// Get returns the cached identity for email, or ErrMiss. Entries written by
// an incompatible snapshot version decode as a miss.
func (c *IdentityCache) Get(ctx context.Context, email string) (*domain.Identity, error) {
	raw, err := c.client.Get(ctx, Key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return decodeSnapshot(raw)
}

// decodeSnapshot rejects entries from an incompatible snapshot version or
// with a role outside the closed set, so a corrupt entry reads as a miss
// rather than an identity with an unknown privilege level.
func decodeSnapshot(raw []byte) (*domain.Identity, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil || snap.Version != snapshotVersion {
		return nil, ErrMiss
	}
	role, err := domain.ParseRole(snap.Role)
	if err != nil {
		return nil, ErrMiss
	}
	return &domain.Identity{
		ID:       snap.ID,
		Username: snap.Username,
		Email:    snap.Email,
		Role:     role,
		Avatar:   snap.Avatar,
		Active:   snap.Active,
	}, nil
}

// Put overwrites the whole entry for email with the configured TTL.
func (c *IdentityCache) Put(ctx context.Context, email string, identity domain.Identity) error {
	raw, err := json.Marshal(snapshot{
		Version:  snapshotVersion,
		ID:       identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Role:     string(identity.Role),
		Avatar:   identity.Avatar,
		Active:   identity.Active,
	})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(email), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Invalidate deletes the entry for email. Mutation paths call this before
// returning so no stale privilege data survives the mutation.
func (c *IdentityCache) Invalidate(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, Key(email)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *IdentityCache) Close() error {
	return c.client.Close()
}

// Key returns the cache key for a user email.
func Key(email string) string {
	return "user:" + email
}
