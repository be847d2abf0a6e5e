package service

import (
	"bitwise74/file-vault/blob"
	"bitwise74/file-vault/internal/model"
	"bitwise74/file-vault/pkg/security"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	DB         *gorm.DB
	Blobs      blob.Store
	Uploader   *Uploader
	Downloader *Downloader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	viper.Set("litterbox.default_hours", 24)

	dir := t.TempDir()

	// Busy timeout so the concurrency tests don't trip over SQLITE_BUSY
	dsn := "file:" + filepath.Join(dir, "test.db") + "?_busy_timeout=5000"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.File{}))

	blobs, err := blob.NewLocal(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	up := NewUploader(db, blobs)
	down := NewDownloader(db, blobs)

	// Min bcrypt cost keeps password tests fast
	hash := &security.FileHash{Cost: 4}
	up.Hash = hash
	down.Hash = hash

	return &testEnv{
		DB:         db,
		Blobs:      blobs,
		Uploader:   up,
		Downloader: down,
	}
}
