package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/domain/identity"
	"github.com/bizportal/backend/internal/infrastructure/config"
	"github.com/bizportal/backend/internal/infrastructure/logger"
	"github.com/bizportal/backend/internal/infrastructure/persistence"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", "", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bizctl.db")
	t.Setenv("BIZ_DATABASE_DRIVER", config.DriverSQLite)
	t.Setenv("BIZ_DATABASE_PATH", path)
	return path
}

func TestRootCmd_Tree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "steps"},
		{"migrate", "version"},
		{"migrate", "force"},
		{"migrate", "create"},
		{"migrate", "list"},
		{"seed"},
		{"fixup"},
		{"demo"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestMigrateList(t *testing.T) {
	out, err := run(t, "migrate", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "000001")
}

func TestMigrate_SQLiteOnlySupportsUp(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "migrate", "version")
	assert.ErrorIs(t, err, errSQLiteMigrations)

	_, err = run(t, "migrate", "force", "abc")
	assert.Error(t, err)
}

func TestMigrateCreate(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "migrate", "create", "add_invoices", "--dir", dir)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "*_add_invoices.*.sql"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestSeed_ValidateOnly(t *testing.T) {
	_, err := run(t, "seed", "--validate")
	require.NoError(t, err)

	_, err = run(t, "seed", "--validate", "--fixture", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDemo_RequiresTenant(t *testing.T) {
	useSQLite(t)
	_, err := run(t, "demo")
	assert.EqualError(t, err, "--tenant is required")
}

func TestDataCommands_SQLite(t *testing.T) {
	path := useSQLite(t)

	_, err := run(t, "migrate", "up")
	require.NoError(t, err)

	// seeding twice leaves the same rows
	_, err = run(t, "seed")
	require.NoError(t, err)
	_, err = run(t, "seed")
	require.NoError(t, err)

	_, err = run(t, "fixup")
	require.NoError(t, err)

	_, err = run(t, "demo", "--tenant", "acme", "--months", "2", "--seed", "7")
	require.NoError(t, err)

	_, err = run(t, "demo", "--tenant", "nope")
	assert.Error(t, err)

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: path},
		logger.NewSQLLogger(zap.NewNop(), logger.MapGormLogLevel("error")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tenants := persistence.NewGormTenantRepository(db.DB)
	acme, err := tenants.FindByCode(context.Background(), "acme")
	require.NoError(t, err)

	users := persistence.NewGormUserRepository(db.DB)
	admin, err := users.FindByEmail(context.Background(), acme.ID, "admin@acme.example")
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, admin.Role)

	var count int64
	require.NoError(t, db.DB.Table("users").Where("tenant_id = ? AND email = ?", acme.ID, "admin@acme.example").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
