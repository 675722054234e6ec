package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibadah-companion-backend/config"
	"ibadah-companion-backend/internal/model"
)

func TestInit_SQLiteMigrates(t *testing.T) {
	gormDB, err := Init(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, m := range []any{&model.WindowOpen{}, &model.WindowHistory{}, &model.PushSubscription{}} {
		assert.True(t, gormDB.Migrator().HasTable(m))
	}
}

func TestInit_UnknownDriver(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
