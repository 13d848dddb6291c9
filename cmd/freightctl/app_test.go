package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDatabase(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", filepath.Join(t.TempDir(), "freightctl.db"))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"freightctl"}, args...))
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")
}

func TestCreateUser(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "create-user", "--email", "Ops@Example.com", "--name", "Ops", "--password", "longenough", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "created ops@example.com (admin)")

	_, err = run(t, "create-user", "--email", "ops@example.com", "--name", "Ops", "--password", "longenough")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "create-user", "--email", "x@example.com", "--name", "X", "--password", "short")
	require.Error(t, err)
}

func TestSeed(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "seed", "--supplier", "Acme", "--supplier", "Globex", "--forwarder", "Maersk")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 2 suppliers, 1 forwarders")

	_, err = run(t, "seed", "--supplier", "Acme")
	require.Error(t, err)
}
