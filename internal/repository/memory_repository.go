package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gourl/msid/internal/models"
)

var _ ProfileRepository = (*MemoryProfileRepository)(nil)

// MemoryProfileRepository keeps profiles in process memory. It backs the
// service when no database is configured and the CLI's profiles file.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
	nextID   int64
	now      func() time.Time
}

// NewMemoryProfileRepository creates an empty in-memory repository.
func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{
		profiles: make(map[string]*models.Profile),
		now:      time.Now,
	}
}

// Create stores a new profile.
func (r *MemoryProfileRepository) Create(_ context.Context, create *models.ProfileCreate) (*models.Profile, error) {
	if err := create.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[create.Name]; ok {
		return nil, fmt.Errorf("%w: %s", models.ErrProfileExists, create.Name)
	}

	r.nextID++
	profile := &models.Profile{
		ID:         r.nextID,
		Name:       create.Name,
		Alphabet:   create.Alphabet,
		Resolution: create.Resolution,
		CreatedAt:  r.now().UTC(),
	}
	if create.Epoch != nil {
		epoch := create.Epoch.UTC()
		profile.Epoch = &epoch
	}
	r.profiles[profile.Name] = profile

	return cloneProfile(profile), nil
}

// GetByName retrieves a profile by its name.
func (r *MemoryProfileRepository) GetByName(_ context.Context, name string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[name]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	return cloneProfile(profile), nil
}

// Delete removes a profile by its name.
func (r *MemoryProfileRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[name]; !ok {
		return models.ErrProfileNotFound
	}
	delete(r.profiles, name)
	return nil
}

// List returns all profiles ordered by name.
func (r *MemoryProfileRepository) List(_ context.Context) ([]*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]*models.Profile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		profiles = append(profiles, cloneProfile(profile))
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// Exists checks if a profile name is taken.
func (r *MemoryProfileRepository) Exists(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.profiles[name]
	return ok, nil
}

// IncrementMinted adds counts to the minted totals of known profiles.
func (r *MemoryProfileRepository) IncrementMinted(_ context.Context, counts map[string]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, n := range counts {
		if profile, ok := r.profiles[name]; ok {
			profile.Minted += n
		}
	}
	return nil
}

// HealthCheck always succeeds.
func (r *MemoryProfileRepository) HealthCheck(context.Context) error {
	return nil
}

func cloneProfile(p *models.Profile) *models.Profile {
	c := *p
	if p.Epoch != nil {
		epoch := *p.Epoch
		c.Epoch = &epoch
	}
	return &c
}
