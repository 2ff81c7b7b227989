package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gourl/msid/internal/models"
	"github.com/gourl/msid/internal/repository"
	"github.com/gourl/msid/internal/services"
)

// ProfileFile is the YAML document read by --profiles.
type ProfileFile struct {
	Profiles []ProfileEntry `yaml:"profiles"`
}

// ProfileEntry describes one profile. Epoch accepts RFC 3339 or unix
// milliseconds.
type ProfileEntry struct {
	Name       string `yaml:"name"`
	Epoch      string `yaml:"epoch,omitempty"`
	Alphabet   string `yaml:"alphabet,omitempty"`
	Resolution string `yaml:"resolution,omitempty"`
}

// LoadProfiles reads and validates a profile file. Unknown fields and
// duplicate names are rejected.
func LoadProfiles(path string) ([]models.ProfileCreate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return ParseProfiles(data)
}

// ParseProfiles decodes a profile file held in memory.
func ParseProfiles(data []byte) ([]models.ProfileCreate, error) {
	var file ProfileFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]bool, len(file.Profiles))
	creates := make([]models.ProfileCreate, 0, len(file.Profiles))
	for i, entry := range file.Profiles {
		create, err := entry.toCreate()
		if err != nil {
			return nil, fmt.Errorf("profile %d (%q): %w", i, entry.Name, err)
		}
		if seen[create.Name] {
			return nil, fmt.Errorf("profile %d (%q): %w", i, entry.Name, models.ErrProfileExists)
		}
		seen[create.Name] = true
		creates = append(creates, create)
	}
	return creates, nil
}

func (e ProfileEntry) toCreate() (models.ProfileCreate, error) {
	cfg, err := services.ParseConfig(e.Epoch, e.Alphabet, e.Resolution)
	if err != nil {
		return models.ProfileCreate{}, err
	}
	create := models.ProfileCreate{
		Name:       e.Name,
		Alphabet:   cfg.Alphabet,
		Resolution: cfg.Resolution,
	}
	if !cfg.Epoch.IsZero() {
		create.Epoch = &cfg.Epoch
	}
	if err := create.Validate(); err != nil {
		return models.ProfileCreate{}, err
	}
	return create, nil
}

// newMemoryProfiles returns an in-memory profile store seeded from path.
// An empty path yields an empty store.
func newMemoryProfiles(ctx context.Context, path string) (*repository.MemoryProfileRepository, error) {
	repo := repository.NewMemoryProfileRepository()
	if path == "" {
		return repo, nil
	}

	creates, err := LoadProfiles(path)
	if err != nil {
		return nil, err
	}
	if err := seedProfiles(ctx, repo, creates); err != nil {
		return nil, err
	}
	return repo, nil
}

// seedProfiles stores creates in repo. Profiles that already exist are kept
// as they are.
func seedProfiles(ctx context.Context, repo repository.ProfileRepository, creates []models.ProfileCreate) error {
	for i := range creates {
		if _, err := repo.Create(ctx, &creates[i]); err != nil && !errors.Is(err, models.ErrProfileExists) {
			return fmt.Errorf("failed to store profile %q: %w", creates[i].Name, err)
		}
	}
	return nil
}
