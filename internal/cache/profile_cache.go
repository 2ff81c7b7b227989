package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gourl/msid/internal/models"
)

// DefaultProfileKeyPrefix prefixes profile cache keys.
const DefaultProfileKeyPrefix = "profile:"

// ProfileCacher defines the interface for profile caching operations.
type ProfileCacher interface {
	Get(ctx context.Context, name string) (*models.Profile, error)
	Set(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, name string) error
	Ping(ctx context.Context) error
}

var _ ProfileCacher = (*ProfileCache)(nil)

// ProfileCache stores profiles as JSON under prefix+name.
type ProfileCache struct {
	cache     Cache
	keyPrefix string
	ttl       time.Duration
}

// NewProfileCache creates a profile cache over cache. Empty arguments take
// DefaultProfileKeyPrefix and a ten minute TTL.
func NewProfileCache(cache Cache, keyPrefix string, ttl time.Duration) *ProfileCache {
	if keyPrefix == "" {
		keyPrefix = DefaultProfileKeyPrefix
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProfileCache{
		cache:     cache,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached profile or ErrCacheMiss.
func (c *ProfileCache) Get(ctx context.Context, name string) (*models.Profile, error) {
	data, err := c.cache.Get(ctx, c.key(name))
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		// Drop entries written by an incompatible version.
		_ = c.cache.Delete(ctx, c.key(name))
		return nil, fmt.Errorf("failed to unmarshal cached profile: %w", err)
	}
	return &profile, nil
}

// Set caches profile under its name.
func (c *ProfileCache) Set(ctx context.Context, profile *models.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return c.cache.Set(ctx, c.key(profile.Name), data, c.ttl)
}

// Delete evicts the profile called name.
func (c *ProfileCache) Delete(ctx context.Context, name string) error {
	return c.cache.Delete(ctx, c.key(name))
}

// Ping checks if the cache is healthy.
func (c *ProfileCache) Ping(ctx context.Context) error {
	return c.cache.Ping(ctx)
}

// TTL returns the expiry applied to cached profiles.
func (c *ProfileCache) TTL() time.Duration {
	return c.ttl
}

func (c *ProfileCache) key(name string) string {
	return c.keyPrefix + name
}
