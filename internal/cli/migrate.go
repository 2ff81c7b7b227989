package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gourl/msid/internal/config"
	"github.com/gourl/msid/internal/database"
)

// Migrate actions.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateVersion = "version"
	MigrateStatus  = "status"
)

// MigrateResult is the output of the migrate command.
type MigrateResult struct {
	Action     string            `json:"action" yaml:"action"`
	Version    int               `json:"version" yaml:"version"`
	Applied    int               `json:"applied,omitempty" yaml:"applied,omitempty"`
	RolledBack string            `json:"rolled_back,omitempty" yaml:"rolled_back,omitempty"`
	Migrations []MigrationStatus `json:"migrations,omitempty" yaml:"migrations,omitempty"`
}

// MigrationStatus describes one known migration.
type MigrationStatus struct {
	Version   int    `json:"version" yaml:"version"`
	Name      string `json:"name" yaml:"name"`
	AppliedAt string `json:"applied_at,omitempty" yaml:"applied_at,omitempty"`
}

// String renders the result for text output.
func (r MigrateResult) String() string {
	switch r.Action {
	case MigrateUp:
		return fmt.Sprintf("applied %d migration(s), schema version %d", r.Applied, r.Version)
	case MigrateDown:
		if r.RolledBack == "" {
			return fmt.Sprintf("nothing to roll back, schema version %d", r.Version)
		}
		return fmt.Sprintf("rolled back %s, schema version %d", r.RolledBack, r.Version)
	case MigrateStatus:
		lines := make([]string, 0, len(r.Migrations))
		for _, m := range r.Migrations {
			state := "pending"
			if m.AppliedAt != "" {
				state = "applied " + m.AppliedAt
			}
			lines = append(lines, fmt.Sprintf("%03d\t%s\t%s", m.Version, m.Name, state))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("%d", r.Version)
	}
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|version|status]",
		Short: "Manage the profile database schema",
		Long: `Apply or roll back the embedded PostgreSQL migrations.

  up       apply all pending migrations
  down     roll back the most recent migration
  version  print the current schema version
  status   list migrations and when they were applied (default)

The database is configured through DB_* environment variables.`,
		Args:          cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs:     []string{MigrateUp, MigrateDown, MigrateVersion, MigrateStatus},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := MigrateStatus
			if len(args) == 1 {
				action = args[0]
			}
			return runMigrate(rootOpts, action, cmd)
		},
	}

	return cmd
}

func runMigrate(opts *RootOptions, action string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}
	if !cfg.DatabaseEnabled() {
		return fail(formatter, ExitCommandError, errors.New("database not configured: set DB_HOST and DB_PASSWORD"))
	}

	pool, err := database.NewPool(ctx, &cfg.Database)
	if err != nil {
		return fail(formatter, ExitFailure, err)
	}
	defer pool.Close()

	migrator, err := database.NewMigrator(pool)
	if err != nil {
		return fail(formatter, ExitFailure, err)
	}
	formatter.VerboseLog("%d embedded migration(s)", len(migrator.Migrations()))

	result := MigrateResult{Action: action}
	switch action {
	case MigrateUp:
		applied, err := migrator.Up(ctx)
		if err != nil {
			return fail(formatter, ExitFailure, fmt.Errorf("applied %d migration(s) before failing: %w", applied, err))
		}
		result.Applied = applied
	case MigrateDown:
		mig, err := migrator.Down(ctx)
		if err != nil {
			return fail(formatter, ExitFailure, err)
		}
		if mig != nil {
			result.RolledBack = fmt.Sprintf("%03d_%s", mig.Version, mig.Name)
		}
	case MigrateStatus:
		statuses, err := migrator.Status(ctx)
		if err != nil {
			return fail(formatter, ExitFailure, err)
		}
		for _, s := range statuses {
			entry := MigrationStatus{Version: s.Version, Name: s.Name}
			if s.AppliedAt != nil {
				entry.AppliedAt = s.AppliedAt.UTC().Format(time.RFC3339)
			}
			result.Migrations = append(result.Migrations, entry)
		}
	}

	version, err := migrator.CurrentVersion(ctx)
	if err != nil {
		return fail(formatter, ExitFailure, err)
	}
	result.Version = version

	return formatter.Success(result)
}
