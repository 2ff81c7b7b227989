package database

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := LoadMigrations(embeddedMigrations, MigrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	first := migrations[0]
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "create_profiles_table", first.Name)
	assert.Contains(t, first.UpSQL, "CREATE TABLE IF NOT EXISTS profiles")
	assert.Contains(t, first.DownSQL, "DROP TABLE IF EXISTS profiles")

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}

	require.GreaterOrEqual(t, len(migrations), 2)
	assert.Equal(t, "add_profile_minted", migrations[1].Name)
	assert.Contains(t, migrations[1].UpSQL, "minted")
}

func TestLoadMigrations(t *testing.T) {
	tests := []struct {
		name      string
		files     fstest.MapFS
		versions  []int
		expectErr string
	}{
		{
			name: "pairs sorted by version",
			files: fstest.MapFS{
				"m/002_second.up.sql":   {Data: []byte("SELECT 2")},
				"m/002_second.down.sql": {Data: []byte("SELECT -2")},
				"m/001_first.up.sql":    {Data: []byte("SELECT 1")},
				"m/README.md":           {Data: []byte("ignored")},
			},
			versions: []int{1, 2},
		},
		{
			name: "missing direction",
			files: fstest.MapFS{
				"m/001_first.sql": {Data: []byte("SELECT 1")},
			},
			expectErr: "missing .up or .down",
		},
		{
			name: "bad version",
			files: fstest.MapFS{
				"m/abc_first.up.sql": {Data: []byte("SELECT 1")},
			},
			expectErr: "invalid version",
		},
		{
			name: "no name",
			files: fstest.MapFS{
				"m/001.up.sql": {Data: []byte("SELECT 1")},
			},
			expectErr: "expected NNN_name",
		},
		{
			name: "down without up",
			files: fstest.MapFS{
				"m/001_first.down.sql": {Data: []byte("SELECT 1")},
			},
			expectErr: "has no up script",
		},
		{
			name: "conflicting names",
			files: fstest.MapFS{
				"m/001_first.up.sql":   {Data: []byte("SELECT 1")},
				"m/001_other.down.sql": {Data: []byte("SELECT 1")},
			},
			expectErr: "conflicting names",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrations, err := LoadMigrations(tt.files, "m")
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			require.NoError(t, err)

			versions := make([]int, 0, len(migrations))
			for _, m := range migrations {
				versions = append(versions, m.Version)
			}
			assert.Equal(t, tt.versions, versions)
		})
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{}, "nope")
	assert.Error(t, err)
}

func TestNewMigratorWithMigrations_Sorts(t *testing.T) {
	m := NewMigratorWithMigrations(nil, []Migration{
		{Version: 3, Name: "c", UpSQL: "SELECT 3"},
		{Version: 1, Name: "a", UpSQL: "SELECT 1"},
		{Version: 2, Name: "b", UpSQL: "SELECT 2"},
	})

	got := m.Migrations()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[2].Name)
}

func TestMergeStatus(t *testing.T) {
	applied := time.Date(2025, 7, 13, 8, 0, 0, 0, time.UTC)
	statuses := mergeStatus(
		[]Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}},
		[]MigrationRecord{{Version: 1, Name: "a", AppliedAt: applied}},
	)

	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Applied())
	assert.Equal(t, applied, *statuses[0].AppliedAt)
	assert.False(t, statuses[1].Applied())
}

func resetSchema(t *testing.T, pool *Pool, tables ...string) {
	t.Helper()
	ctx := context.Background()
	for _, table := range append(tables, "schema_migrations") {
		_, _ = pool.Exec(ctx, "DROP TABLE IF EXISTS "+table)
	}
	t.Cleanup(func() {
		for _, table := range append(tables, "schema_migrations") {
			_, _ = pool.Exec(ctx, "DROP TABLE IF EXISTS "+table)
		}
	})
}

func TestMigrator_UpDown(t *testing.T) {
	skipIfNoPostgres(t)

	ctx := context.Background()
	pool, err := NewPool(ctx, testDBConfig())
	require.NoError(t, err)
	defer pool.Close()
	resetSchema(t, pool, "profiles")

	migrator, err := NewMigrator(pool)
	require.NoError(t, err)

	applied, err := migrator.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(migrator.Migrations()), applied)

	// Idempotent
	applied, err = migrator.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	version, err := migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrator.Migrations()[len(migrator.Migrations())-1].Version, version)

	statuses, err := migrator.Status(ctx)
	require.NoError(t, err)
	for _, st := range statuses {
		assert.True(t, st.Applied(), "migration %d", st.Version)
	}

	for range migrator.Migrations() {
		rolled, err := migrator.Down(ctx)
		require.NoError(t, err)
		require.NotNil(t, rolled)
	}

	rolled, err := migrator.Down(ctx)
	require.NoError(t, err)
	assert.Nil(t, rolled)

	version, err = migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}

func TestMigrator_StopsAtFailure(t *testing.T) {
	skipIfNoPostgres(t)

	ctx := context.Background()
	pool, err := NewPool(ctx, testDBConfig())
	require.NoError(t, err)
	defer pool.Close()
	resetSchema(t, pool, "test_tx_table")

	migrator := NewMigratorWithMigrations(pool, []Migration{
		{Version: 1, Name: "valid", UpSQL: "CREATE TABLE test_tx_table (id SERIAL PRIMARY KEY)", DownSQL: "DROP TABLE test_tx_table"},
		{Version: 2, Name: "invalid", UpSQL: "THIS IS NOT VALID SQL"},
	})

	applied, err := migrator.Up(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, applied)

	version, err := migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	pending, err := migrator.PendingMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)
}
