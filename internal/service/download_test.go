package service

import (
	"bitwise74/file-vault/internal/model"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	payload := []byte("ten  bytes")

	info, err := env.Uploader.Upload(ctx, &UploadRequest{
		UserID:    "u1",
		Filename:  "notes.txt",
		Format:    "text/plain",
		Data:      payload,
		ExpiresIn: 1,
	})
	require.NoError(t, err)
	require.Len(t, info.Code, 6)
	assert.False(t, info.PasswordProtected)
	assert.Zero(t, info.DownloadCount)

	// Info right after upload mirrors the upload response
	got, err := env.Downloader.Info(info.Code)
	require.NoError(t, err)
	assert.Equal(t, info, got)

	res, err := env.Downloader.Download(ctx, info.Code, "")
	require.NoError(t, err)
	assert.Equal(t, payload, res.Data)
	assert.Equal(t, "notes.txt", res.Filename)
	assert.Equal(t, "text/plain", res.Format)

	// The completed download is visible in the projection
	got, err = env.Downloader.Info(info.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.DownloadCount)
}

func TestDownload_PasswordGating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	info, err := env.Uploader.Upload(ctx, &UploadRequest{
		UserID:   "u1",
		Filename: "notes.txt",
		Data:     []byte("guarded"),
		Password: "secret",
	})
	require.NoError(t, err)
	assert.True(t, info.PasswordProtected)

	_, err = env.Downloader.Download(ctx, info.Code, "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = env.Downloader.Download(ctx, info.Code, "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	res, err := env.Downloader.Download(ctx, info.Code, "secret")
	require.NoError(t, err)
	assert.Equal(t, []byte("guarded"), res.Data)

	// Failed attempts must not count as downloads
	got, err := env.Downloader.Info(info.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.DownloadCount)
}

func TestDownload_UnknownCode(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Downloader.Download(context.Background(), "nosuch", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.Downloader.Info("nosuch")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownload_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	info, err := env.Uploader.Upload(ctx, &UploadRequest{
		UserID:   "u1",
		Filename: "notes.txt",
		Data:     []byte("lapsing"),
	})
	require.NoError(t, err)

	past := time.Now().Add(-time.Second).Unix()
	require.NoError(t, env.DB.
		Model(model.File{}).
		Where("code = ?", info.Code).
		Update("expires_at", past).
		Error)

	_, err = env.Downloader.Download(ctx, info.Code, "")
	assert.ErrorIs(t, err, ErrExpired)

	// Expired is distinct from absent, and info hides the projection too
	_, err = env.Downloader.Info(info.Code)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestDownload_MissingBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	info, err := env.Uploader.Upload(ctx, &UploadRequest{
		UserID:   "u1",
		Filename: "notes.txt",
		Data:     []byte("gone"),
	})
	require.NoError(t, err)

	var rec model.File
	require.NoError(t, env.DB.Where("code = ?", info.Code).First(&rec).Error)
	require.NoError(t, env.Blobs.Delete(ctx, rec.BlobKey))

	// Metadata without a blob is our inconsistency, not a 404
	_, err = env.Downloader.Download(ctx, info.Code, "")
	assert.ErrorIs(t, err, ErrStorageIO)
}

func TestDownload_TamperedBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	info, err := env.Uploader.Upload(ctx, &UploadRequest{
		UserID:   "u1",
		Filename: "notes.txt",
		Data:     []byte("integrity"),
	})
	require.NoError(t, err)

	var rec model.File
	require.NoError(t, env.DB.Where("code = ?", info.Code).First(&rec).Error)

	stored, err := env.Blobs.Get(ctx, rec.BlobKey)
	require.NoError(t, err)
	stored[0] ^= 0x01
	require.NoError(t, env.Blobs.Put(ctx, rec.BlobKey, stored))

	_, err = env.Downloader.Download(ctx, info.Code, "")
	assert.ErrorIs(t, err, ErrDecryption)

	// A failed download never bumps the counter
	got, err := env.Downloader.Info(info.Code)
	require.NoError(t, err)
	assert.Zero(t, got.DownloadCount)
}

func TestDownload_ConcurrentCounting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	info, err := env.Uploader.Upload(ctx, &UploadRequest{
		UserID:   "u1",
		Filename: "notes.txt",
		Data:     []byte("popular"),
	})
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)

	for range n {
		go func() {
			defer wg.Done()
			_, err := env.Downloader.Download(ctx, info.Code, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := env.Downloader.Info(info.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.DownloadCount, "concurrent downloads must not lose increments")
}
