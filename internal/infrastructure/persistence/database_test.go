package persistence

import (
	"testing"

	"github.com/school/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func sqliteConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            "file::memory:",
		MaxOpenConns:    5,
		MaxIdleConns:    1,
		ConnMaxLifetime: 1,
		ConnMaxIdleTime: 1,
	}
}

func TestNewDatabase_Sqlite(t *testing.T) {
	db, err := NewDatabase(sqliteConfig())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Driver = "oracle"

	_, err := NewDatabase(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestDatabase_Transaction(t *testing.T) {
	db, err := NewDatabase(sqliteConfig())
	require.NoError(t, err)
	defer db.Close()

	type note struct {
		ID   uint
		Body string
	}
	require.NoError(t, db.DB.AutoMigrate(&note{}))

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&note{Body: "kept"}).Error; err != nil {
			return err
		}
		return nil
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&note{Body: "rolled back"}).Error; err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int64
	require.NoError(t, db.DB.Model(&note{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
