package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gourl/msid/internal/analytics"
	"github.com/gourl/msid/internal/cache"
	"github.com/gourl/msid/internal/config"
	"github.com/gourl/msid/internal/database"
	"github.com/gourl/msid/internal/handlers"
	"github.com/gourl/msid/internal/middleware"
	"github.com/gourl/msid/internal/ratelimit"
	"github.com/gourl/msid/internal/repository"
	"github.com/gourl/msid/internal/server"
	"github.com/gourl/msid/internal/services"
	"github.com/gourl/msid/pkg/logger"
	"github.com/gourl/msid/pkg/msid"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Migrate bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Long: `Run the identifier HTTP API.

Configuration comes from the environment (SERVER_*, DB_*, REDIS_*,
CODEC_*, PROFILE_CACHE_TTL, ID_MAX_BATCH). Profiles are stored in
PostgreSQL when DB_PASSWORD is set, otherwise in memory. --profiles
seeds either store. Redis, when reachable, caches PostgreSQL lookups. The
--epoch, --alphabet and --resolution flags override CODEC_*.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "apply pending database migrations before serving")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := config.Load()
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}
	defaults, err := serveDefaults(cfg, opts.RootOptions)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.App.LogLevel, middleware.RequestIDAttr).
		With("service", "msid", "env", cfg.App.Env)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, closeStore, err := openProfileStore(ctx, cfg, opts, log)
	if err != nil {
		return fail(formatter, ExitFailure, err)
	}
	defer closeStore()

	usage := analytics.NewMintCounter(analytics.Config{
		FlushInterval: cfg.Usage.FlushInterval,
		BatchSize:     cfg.Usage.BatchSize,
	}, analytics.NewRepositoryFlusher(profiles, log))
	defer usage.Stop()

	idService := services.NewIDService(opts.codec,
		services.WithProfiles(profiles),
		services.WithUsage(usage),
		services.WithDefaults(defaults),
		services.WithMaxBatch(cfg.IDs.MaxBatch),
	)

	var idOpts []handlers.IDHandlerOption
	if cfg.IDs.QuotaEnabled() {
		quota := ratelimit.NewMemoryLimiter(ratelimit.Config{
			IDs:    cfg.IDs.Quota,
			Window: cfg.IDs.QuotaWindow,
		})
		defer quota.Close()
		idOpts = append(idOpts, handlers.WithQuota(quota))
		log.Info("identifier quota enabled", "ids", cfg.IDs.Quota, "window", cfg.IDs.QuotaWindow.String())
	}

	srv := server.New(cfg, log)
	srv.SetProfileRepository(profiles)
	srv.SetIDHandler(handlers.NewIDHandler(idService, idOpts...))
	srv.SetProfileHandler(handlers.NewProfileHandler(services.NewProfileService(profiles)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fail(formatter, ExitFailure, err)
	}
	return nil
}

// serveDefaults returns the CODEC_* configuration with the codec flags
// applied on top.
func serveDefaults(cfg *config.Config, opts *RootOptions) (msid.Config, error) {
	overrides, err := opts.overrides()
	if err != nil {
		return msid.Config{}, err
	}
	defaults := cfg.CodecConfig()
	if !overrides.Epoch.IsZero() {
		defaults.Epoch = overrides.Epoch
	}
	if overrides.Alphabet != "" {
		defaults.Alphabet = overrides.Alphabet
	}
	if overrides.Resolution != msid.Unspecified {
		defaults.Resolution = overrides.Resolution
	}
	return defaults, nil
}

// openProfileStore picks the profile repository for serve: PostgreSQL when
// configured, otherwise memory. A reachable Redis caches PostgreSQL lookups.
func openProfileStore(ctx context.Context, cfg *config.Config, opts *ServeOptions, log *slog.Logger) (repository.ProfileRepository, func(), error) {
	var (
		repo    repository.ProfileRepository
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseEnabled() {
		pool, err := database.NewPool(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pool.Close)

		if opts.Migrate {
			migrator, err := database.NewMigrator(pool)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			applied, err := migrator.Up(ctx)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("migrations failed after %d applied: %w", applied, err)
			}
			log.Info("migrations applied", "count", applied)
		}

		repo = repository.NewPostgresProfileRepository(pool)
		if opts.Profiles != "" {
			creates, err := LoadProfiles(opts.Profiles)
			if err == nil {
				err = seedProfiles(ctx, repo, creates)
			}
			if err != nil {
				closeAll()
				return nil, nil, err
			}
		}
		log.Info("profile store ready", "backend", "postgres", "host", cfg.Database.Host)
	} else {
		mem, err := newMemoryProfiles(ctx, opts.Profiles)
		if err != nil {
			return nil, nil, err
		}
		repo = mem
		log.Info("profile store ready", "backend", "memory")
	}

	if cfg.DatabaseEnabled() && cfg.RedisEnabled() {
		redisCache, err := cache.NewRedisCache(ctx, &cfg.Redis)
		if err != nil {
			log.Warn("profile cache disabled", "error", err.Error())
		} else {
			closers = append(closers, func() {
				if err := redisCache.Close(); err != nil {
					log.Error("failed to close redis", "error", err.Error())
				}
			})
			profileCache := cache.NewProfileCache(redisCache, cache.DefaultProfileKeyPrefix, cfg.Profiles.CacheTTL)
			repo = repository.NewCachedProfileRepository(repo, profileCache, log)
			log.Info("profile cache enabled", "ttl", cfg.Profiles.CacheTTL.String())
		}
	}

	return repo, closeAll, nil
}
