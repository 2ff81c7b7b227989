package analytics

import (
	"context"
	"log/slog"
)

// MintedRepository persists minted totals.
type MintedRepository interface {
	IncrementMinted(ctx context.Context, counts map[string]int64) error
}

// RepositoryFlusher implements Flusher using a repository.
type RepositoryFlusher struct {
	repo MintedRepository
	log  *slog.Logger
}

// NewRepositoryFlusher creates a new RepositoryFlusher.
func NewRepositoryFlusher(repo MintedRepository, log *slog.Logger) *RepositoryFlusher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RepositoryFlusher{
		repo: repo,
		log:  log,
	}
}

// FlushMinted persists minted counts to the repository.
func (f *RepositoryFlusher) FlushMinted(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}

	if err := f.repo.IncrementMinted(ctx, counts); err != nil {
		f.log.ErrorContext(ctx, "failed to flush minted counts", "error", err.Error(), "profiles", len(counts))
		return err
	}

	total := int64(0)
	for _, n := range counts {
		total += n
	}
	f.log.DebugContext(ctx, "flushed minted counts", "profiles", len(counts), "ids", total)

	return nil
}
