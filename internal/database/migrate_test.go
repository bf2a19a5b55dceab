package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		body, err := fs.ReadFile(migrations, "migrations/"+e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", e.Name())
		assert.Contains(t, string(body), "-- +goose Down", e.Name())
	}
}

func TestEnsureDatabaseRejectsURLWithoutName(t *testing.T) {
	err := ensureDatabase("postgres://u:p@localhost:5432/?sslmode=disable")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "database name is empty"))
}
