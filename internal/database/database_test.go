package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/user-portal/internal/users"
)

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "users.db")

	db, err := Open(Options{Driver: DriverSQLite, URL: dsn, Logger: zap.NewNop()})
	require.NoError(t, err)
	defer Close(db)

	assert.True(t, db.Migrator().HasTable(&users.User{}))
	assert.True(t, db.Migrator().HasIndex(&users.User{}, "idx_users_email"))
	assert.True(t, db.Migrator().HasIndex(&users.User{}, "idx_users_mobile"))
}

func TestOpenIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "users.db")

	first, err := Open(Options{Driver: DriverSQLite, URL: dsn})
	require.NoError(t, err)
	require.NoError(t, Close(first))

	second, err := Open(Options{Driver: DriverSQLite, URL: dsn})
	require.NoError(t, err)
	require.NoError(t, Close(second))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Options{Driver: "oracle", URL: "x"})
	assert.Error(t, err)
}
