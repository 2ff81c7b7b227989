package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/gourl/msid/internal/cache"
	"github.com/gourl/msid/internal/metrics"
	"github.com/gourl/msid/internal/models"
)

var _ ProfileRepository = (*CachedProfileRepository)(nil)

// CachedProfileRepository wraps a ProfileRepository with a read-through,
// write-through profile cache. Cache failures are logged and never fail the
// call. Concurrent misses for one name share a single repository read.
type CachedProfileRepository struct {
	repo  ProfileRepository
	cache cache.ProfileCacher
	log   *slog.Logger
	loads singleflight.Group
}

// NewCachedProfileRepository creates a new cached profile repository.
func NewCachedProfileRepository(repo ProfileRepository, profileCache cache.ProfileCacher, log *slog.Logger) *CachedProfileRepository {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &CachedProfileRepository{
		repo:  repo,
		cache: profileCache,
		log:   log,
	}
}

// Create stores a new profile in the repository, then caches it.
func (c *CachedProfileRepository) Create(ctx context.Context, create *models.ProfileCreate) (*models.Profile, error) {
	profile, err := c.repo.Create(ctx, create)
	if err != nil {
		return nil, err
	}

	c.store(ctx, profile)
	return profile, nil
}

// GetByName checks the cache first and falls back to the repository.
func (c *CachedProfileRepository) GetByName(ctx context.Context, name string) (*models.Profile, error) {
	profile, err := c.cache.Get(ctx, name)
	if err == nil {
		metrics.RecordProfileCacheHit()
		return profile, nil
	}
	metrics.RecordProfileCacheMiss()
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.log.WarnContext(ctx, "profile cache read failed", "profile", name, "error", err.Error())
	}

	v, err, _ := c.loads.Do(name, func() (any, error) {
		profile, err := c.repo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		c.store(ctx, profile)
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Profile), nil
}

// Delete evicts the cached profile and removes it from the repository.
func (c *CachedProfileRepository) Delete(ctx context.Context, name string) error {
	if err := c.cache.Delete(ctx, name); err != nil {
		c.log.WarnContext(ctx, "profile cache evict failed", "profile", name, "error", err.Error())
	}
	return c.repo.Delete(ctx, name)
}

// List always reads the repository.
func (c *CachedProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	return c.repo.List(ctx)
}

// Exists checks the cache first and falls back to the repository.
func (c *CachedProfileRepository) Exists(ctx context.Context, name string) (bool, error) {
	if _, err := c.cache.Get(ctx, name); err == nil {
		return true, nil
	}
	return c.repo.Exists(ctx, name)
}

// IncrementMinted updates the repository, then evicts the affected profiles
// so later reads see the new totals.
func (c *CachedProfileRepository) IncrementMinted(ctx context.Context, counts map[string]int64) error {
	if err := c.repo.IncrementMinted(ctx, counts); err != nil {
		return err
	}
	for name := range counts {
		if err := c.cache.Delete(ctx, name); err != nil {
			c.log.WarnContext(ctx, "profile cache evict failed", "profile", name, "error", err.Error())
		}
	}
	return nil
}

// HealthCheck checks both cache and repository health.
func (c *CachedProfileRepository) HealthCheck(ctx context.Context) error {
	if err := c.cache.Ping(ctx); err != nil {
		return fmt.Errorf("profile cache: %w", err)
	}
	return c.repo.HealthCheck(ctx)
}

func (c *CachedProfileRepository) store(ctx context.Context, profile *models.Profile) {
	if err := c.cache.Set(ctx, profile); err != nil {
		c.log.WarnContext(ctx, "profile cache write failed", "profile", profile.Name, "error", err.Error())
	}
}
