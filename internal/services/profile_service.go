// Package services contains business logic.
package services

import (
	"context"

	"github.com/gourl/msid/internal/models"
	"github.com/gourl/msid/internal/repository"
)

// ProfileService defines the interface for profile management.
type ProfileService interface {
	Create(ctx context.Context, create models.ProfileCreate) (*models.Profile, error)
	Get(ctx context.Context, name string) (*models.Profile, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]*models.Profile, error)
}

var _ ProfileService = (*ProfileServiceImpl)(nil)

// ProfileServiceImpl implements ProfileService.
type ProfileServiceImpl struct {
	repo repository.ProfileRepository
}

// NewProfileService creates a new ProfileService instance.
func NewProfileService(repo repository.ProfileRepository) *ProfileServiceImpl {
	return &ProfileServiceImpl{repo: repo}
}

// Create validates and stores a new profile.
func (s *ProfileServiceImpl) Create(ctx context.Context, create models.ProfileCreate) (*models.Profile, error) {
	if err := create.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &create)
}

// Get retrieves a profile by name.
func (s *ProfileServiceImpl) Get(ctx context.Context, name string) (*models.Profile, error) {
	if err := models.ValidateProfileName(name); err != nil {
		return nil, err
	}
	return s.repo.GetByName(ctx, name)
}

// Delete removes a profile by name.
func (s *ProfileServiceImpl) Delete(ctx context.Context, name string) error {
	if err := models.ValidateProfileName(name); err != nil {
		return err
	}
	return s.repo.Delete(ctx, name)
}

// List returns all profiles ordered by name.
func (s *ProfileServiceImpl) List(ctx context.Context) ([]*models.Profile, error) {
	return s.repo.List(ctx)
}
