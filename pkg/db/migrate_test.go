package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../migrations"

// TestMigrationFilesExist verifies that migration files are present
func TestMigrationFilesExist(t *testing.T) {
	for _, filename := range []string{
		"000001_profile_slots.up.sql",
		"000001_profile_slots.down.sql",
	} {
		_, err := os.Stat(filepath.Join(migrationsDir, filename))
		assert.NoError(t, err, "migration file %s", filename)
	}
}

func TestMigrationFilesParseable(t *testing.T) {
	up, err := os.ReadFile(filepath.Join(migrationsDir, "000001_profile_slots.up.sql"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(up), "CREATE TABLE IF NOT EXISTS profile_slots"))
	assert.True(t, strings.Contains(string(up), "key        TEXT PRIMARY KEY"))

	down, err := os.ReadFile(filepath.Join(migrationsDir, "000001_profile_slots.down.sql"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(down), "DROP TABLE"))
}

func TestContainsSSLMode(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{url: "postgres://localhost:5432/profile", want: false},
		{url: "postgres://localhost:5432/profile?sslmode=disable", want: false},
		{url: "postgres://db:6432/profile?sslmode=require", want: true},
		{url: "postgres://db:6432/profile?sslmode=verify-full", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, containsSSLMode(tt.url))
		})
	}
}

func TestConfigureTLS_LocalDevelopment(t *testing.T) {
	cfg, err := configureTLS(PoolConfig{URL: "postgres://localhost:5432/profile"})
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestConfigureTLS_MissingCACert(t *testing.T) {
	_, err := configureTLS(PoolConfig{
		URL:        "postgres://db:6432/profile?sslmode=verify-full",
		CACertPath: filepath.Join(t.TempDir(), "absent.crt"),
	})
	assert.Error(t, err)
}
