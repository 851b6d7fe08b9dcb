package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

func TestNew_SQLite(t *testing.T) {
	db, err := New(&Config{
		Driver:       "sqlite",
		FilePath:     filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db, &widget{}))
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)

	var got widget
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "a", got.Name)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "x.db?_busy_timeout=5000", sqliteDSN("x.db"))
	assert.Equal(t, "x.db?cache=shared&_busy_timeout=5000", sqliteDSN("x.db?cache=shared"))
	assert.Equal(t, "x.db?_busy_timeout=100", sqliteDSN("x.db?_busy_timeout=100"))
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("SILENT"))
	assert.Equal(t, logger.Info, gormLogLevel("info"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}
