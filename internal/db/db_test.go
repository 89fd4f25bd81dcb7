package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/workshopstudio/taskapi/internal/db/models"
)

func TestOptions_WithDefaults(t *testing.T) {
	opts, err := Options{}.WithDefaults()
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, opts.Host)
	assert.Equal(t, DefaultPort, opts.Port)
	assert.Equal(t, DefaultDBName, opts.DBName)
	require.NotNil(t, opts.SSLEnabled)
	assert.False(t, *opts.SSLEnabled)
	assert.Equal(t, logger.Warn, opts.LogLevel)

	opts, err = Options{Host: "db", Port: 6543, DBName: "other"}.WithDefaults()
	require.NoError(t, err)
	assert.Equal(t, "db", opts.Host)
	assert.Equal(t, 6543, opts.Port)
	assert.Equal(t, "other", opts.DBName)
	assert.Equal(t, DefaultUser, opts.User)
}

func TestOptions_DSN(t *testing.T) {
	ssl := true
	opts := Options{Host: "db", User: "u", Password: "p", DBName: "tasks", Port: 5433, SSLEnabled: &ssl}
	assert.Equal(t, "host=db user=u password=p dbname=tasks port=5433 sslmode=require", opts.DSN())

	opts.SSLEnabled = nil
	assert.Contains(t, opts.DSN(), "sslmode=disable")
}

func TestOpenSQLite(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		db, err := OpenSQLite(MemoryDSN)
		require.NoError(t, err)
		defer func() { _ = Close(db) }()

		assert.True(t, db.Migrator().HasTable(&models.Task{}))
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.db")
		db, err := OpenSQLite(path)
		require.NoError(t, err)

		require.NoError(t, db.Create(&models.Task{TaskID: "t1", UserID: "u1", Title: "a"}).Error)
		require.NoError(t, Close(db))

		db, err = OpenSQLite(path)
		require.NoError(t, err)
		defer func() { _ = Close(db) }()

		var count int64
		require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestIsDuplicateKeyError(t *testing.T) {
	db, err := OpenSQLite(MemoryDSN)
	require.NoError(t, err)
	defer func() { _ = Close(db) }()

	require.NoError(t, db.Create(&models.Task{TaskID: "t1", UserID: "u1", Title: "a"}).Error)
	err = db.Create(&models.Task{TaskID: "t1", UserID: "u2", Title: "b"}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKeyError(err))
	assert.False(t, IsDuplicateKeyError(gorm.ErrRecordNotFound))
}
