package database

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgettracker/internal/config"
)

func TestConfigURLEscapesCredentials(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBDriver:   "postgres",
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "budget",
		DBPassword: "p@ss/word",
		DBName:     "budget_tracker",
		DBSSLMode:  "disable",
	})

	assert.Equal(t, "postgres://budget:p%40ss%2Fword@db:5432/budget_tracker?sslmode=disable", cfg.URL())
	assert.Contains(t, cfg.DSN(), "dbname=budget_tracker")
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestNewManagerSQLite(t *testing.T) {
	m, err := NewManager(&Config{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "budget.db"),
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, m.Close()) }()

	require.NoError(t, m.Migrate())
	for _, table := range []string{"users", "categories", "transactions", "budgets", "audit_logs"} {
		assert.True(t, m.DB().Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, m.DB().Migrator().HasIndex("budgets", "idx_budgets_user_month"))
}

func TestNewManagerRejectsUnknownDriver(t *testing.T) {
	_, err := NewManager(&Config{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
