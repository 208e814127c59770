package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todolist/internal/config"
)

// useDatabase points loadConfig at a throwaway SQLite file.
func useDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.db")

	orig := loadConfig
	loadConfig = func() (*config.CLIConfig, error) {
		return &config.CLIConfig{Database: config.DatabaseConfig{Driver: "sqlite", DSN: path}}, nil
	}
	t.Cleanup(func() { loadConfig = orig })
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer

	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	useDatabase(t)

	out, err := execute(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "current: 0")
	assert.Contains(t, out, "pending migrations")

	out, err = execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema at version 1")

	out, err = execute(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "current: 1")
	assert.NotContains(t, out, "pending")
}

func TestSeed(t *testing.T) {
	useDatabase(t)

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded sample data")

	out, err = execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")
}

func TestSeed_WithoutMigrationsFails(t *testing.T) {
	useDatabase(t)

	_, err := execute(t, "seed", "--migrate=false")
	assert.Error(t, err)
}

func TestOpenAPI(t *testing.T) {
	out, err := execute(t, "openapi")
	require.NoError(t, err)
	assert.Contains(t, out, `"openapi": "3.0.3"`)

	out, err = execute(t, "openapi", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "openapi: 3.0.3")

	_, err = execute(t, "openapi", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestOpenAPI_WriteAndValidateFile(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "openapi."+format)

			_, err := execute(t, "openapi", "-f", format, "-o", path)
			require.NoError(t, err)
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())

			out, err := execute(t, "openapi", "validate", path)
			require.NoError(t, err)
			assert.Contains(t, out, "is valid")
			assert.Contains(t, out, "5 paths")
		})
	}
}

func TestOpenAPI_ValidateBuiltIn(t *testing.T) {
	out, err := execute(t, "openapi", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "built-in document is valid")
}

func TestOpenAPI_ValidateRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"openapi":"3.0.3","info":{},"paths":{}}`), 0o600))

	_, err := execute(t, "openapi", "validate", path)
	assert.Error(t, err)
}
