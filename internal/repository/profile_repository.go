// Package repository handles profile persistence.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gourl/msid/internal/database"
	"github.com/gourl/msid/internal/models"
	"github.com/gourl/msid/pkg/msid"
)

// ProfileRepository defines the interface for profile persistence operations.
type ProfileRepository interface {
	// Create stores a new profile and returns the created entity.
	Create(ctx context.Context, profile *models.ProfileCreate) (*models.Profile, error)

	// GetByName retrieves a profile by its name.
	GetByName(ctx context.Context, name string) (*models.Profile, error)

	// Delete removes a profile by its name.
	Delete(ctx context.Context, name string) error

	// List returns all profiles ordered by name.
	List(ctx context.Context) ([]*models.Profile, error)

	// Exists checks if a profile name is taken.
	Exists(ctx context.Context, name string) (bool, error)

	// IncrementMinted adds counts to the minted totals of the named
	// profiles. Unknown names are ignored.
	IncrementMinted(ctx context.Context, counts map[string]int64) error

	// HealthCheck verifies the repository is healthy.
	HealthCheck(ctx context.Context) error
}

var _ ProfileRepository = (*PostgresProfileRepository)(nil)

// PostgresProfileRepository implements ProfileRepository using PostgreSQL.
type PostgresProfileRepository struct {
	pool *database.Pool
}

// NewPostgresProfileRepository creates a new PostgreSQL-backed profile repository.
func NewPostgresProfileRepository(pool *database.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

const profileColumns = `id, name, epoch, alphabet, resolution, minted, created_at`

// Create stores a new profile.
func (r *PostgresProfileRepository) Create(ctx context.Context, create *models.ProfileCreate) (*models.Profile, error) {
	if err := create.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO profiles (name, epoch, alphabet, resolution)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query, create.Name, create.Epoch, create.Alphabet, create.Resolution.String())
	profile, err := scanProfile(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrProfileExists, create.Name)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// GetByName retrieves a profile by its name.
func (r *PostgresProfileRepository) GetByName(ctx context.Context, name string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE name = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// Delete removes a profile by its name.
func (r *PostgresProfileRepository) Delete(ctx context.Context, name string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrProfileNotFound
	}

	return nil
}

// List returns all profiles ordered by name.
func (r *PostgresProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}

// Exists checks if a profile name is taken.
func (r *PostgresProfileRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return exists, nil
}

// IncrementMinted adds counts to the minted totals in a single batch.
func (r *PostgresProfileRepository) IncrementMinted(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for name, n := range counts {
		batch.Queue(`UPDATE profiles SET minted = minted + $2 WHERE name = $1`, name, n)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to increment minted counts: %w", err)
	}
	return nil
}

// HealthCheck verifies the database connection is healthy.
func (r *PostgresProfileRepository) HealthCheck(ctx context.Context) error {
	return r.pool.HealthCheck(ctx)
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var (
		profile    models.Profile
		epoch      *time.Time
		resolution string
	)
	if err := row.Scan(
		&profile.ID,
		&profile.Name,
		&epoch,
		&profile.Alphabet,
		&resolution,
		&profile.Minted,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}

	res, err := msid.ParseResolution(resolution)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", profile.Name, err)
	}
	profile.Resolution = res
	if epoch != nil {
		utc := epoch.UTC()
		profile.Epoch = &utc
	}
	profile.CreatedAt = profile.CreatedAt.UTC()

	return &profile, nil
}

// isUniqueViolation reports a PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
