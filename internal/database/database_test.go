package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "salon", Password: "secret", Name: "salon_db", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=salon password=secret dbname=salon_db sslmode=disable", cfg.DSN())
}

func TestMigrationsAreEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	body, err := fs.ReadFile(migrations, names[0])
	require.NoError(t, err)
	sql := string(body)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(sql), "-- +goose Up"))
	assert.Contains(t, sql, "-- +goose Down")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS appointments")
}
