// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-id/data"
	"github.com/taibuivan/yomira-id/internal/platform/migration"
)

/*
TestConvertToPgx5DSN rewrites postgres URLs to the pgx5 scheme.
*/
func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"postgres://u:p@db:5432/yomira", "pgx5://u:p@db:5432/yomira"},
		{"postgresql://u:p@db/yomira?sslmode=disable", "pgx5://u:p@db/yomira?sslmode=disable"},
		{"pgx5://db/yomira", "pgx5://db/yomira"},
		{"host=db user=u", "host=db user=u"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.out, migration.ConvertToPgx5DSN(tt.in))
	}
}

/*
TestEmbeddedMigrations checks the shipped files pair up under golang-migrate naming.
*/
func TestEmbeddedMigrations(t *testing.T) {
	driver, err := iofs.New(data.Migrations, "migrations")
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	first, err := driver.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, identifier, err := driver.ReadUp(first)
	require.NoError(t, err)
	t.Cleanup(func() { _ = up.Close() })
	assert.Equal(t, "init_identity", identifier)

	down, _, err := driver.ReadDown(first)
	require.NoError(t, err)
	_ = down.Close()
}

/*
TestRunUp_NoSource fails before touching the database.
*/
func TestRunUp_NoSource(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := migration.RunUp("postgres://u:p@localhost/yomira", migration.Source{}, logger)
	assert.ErrorContains(t, err, "migration_init_failed")
}
