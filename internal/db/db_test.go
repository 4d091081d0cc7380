package db

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sweetshop/internal/model"
)

func openTestDB(t *testing.T, log zerolog.Logger) *gorm.DB {
	t.Helper()
	gdb, err := Open("sqlite", filepath.Join(t.TempDir(), "shop.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", zerolog.Nop())
	assert.Error(t, err)
}

func TestMigrate_SQLite(t *testing.T) {
	gdb := openTestDB(t, zerolog.Nop())

	require.NoError(t, Migrate(gdb, false))
	assert.True(t, gdb.Migrator().HasTable(&model.User{}))
	assert.True(t, gdb.Migrator().HasTable(&model.Sweet{}))

	// reset drops and recreates
	require.NoError(t, Migrate(gdb, true))
	assert.True(t, gdb.Migrator().HasTable(&model.Sweet{}))
}

func TestOpen_SQLiteLowerFoldsUnicode(t *testing.T) {
	gdb := openTestDB(t, zerolog.Nop())

	var got string
	require.NoError(t, gdb.Raw("SELECT LOWER(?)", "ÉCLAIR Ünd Crème").Scan(&got).Error)
	assert.Equal(t, "éclair ünd crème", got)
}

func TestOpen_LogsThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	gdb := openTestDB(t, zerolog.New(&buf))
	require.NoError(t, Migrate(gdb, false))
	buf.Reset()

	var sweet model.Sweet
	err := gdb.Where("id = ?", uuid.New()).First(&sweet).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	var n int64
	assert.Error(t, gdb.Table("no_such_table").Count(&n).Error)
	assert.Contains(t, buf.String(), `"component":"gorm"`)
	assert.Contains(t, buf.String(), "no such table")
}
