package service

import (
	"bitwise74/file-vault/blob"
	"bitwise74/file-vault/internal/model"
	"bitwise74/file-vault/pkg/security"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Downloader struct {
	DB        *gorm.DB
	Blobs     blob.Store
	Engine    *security.Engine
	Custodian security.Custodian
	Hash      *security.FileHash
}

func NewDownloader(db *gorm.DB, blobs blob.Store) *Downloader {
	return &Downloader{
		DB:        db,
		Blobs:     blobs,
		Engine:    security.NewEngine(),
		Custodian: security.InlineCustodian{},
		Hash:      security.NewFileHash(),
	}
}

type DownloadResult struct {
	Data     []byte
	Filename string
	Format   string
}

// Download resolves a code to plaintext content. The caller's password is
// only consulted when the record carries a hash; a missing password is
// reported separately from a wrong one so clients can prompt
func (d *Downloader) Download(ctx context.Context, code, password string) (*DownloadResult, error) {
	rec, err := d.lookup(code)
	if err != nil {
		return nil, err
	}

	if rec.PasswordHash != nil {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if !d.Hash.Verify(password, *rec.PasswordHash) {
			return nil, ErrInvalidPassword
		}
	}

	ciphertext, err := d.Blobs.Get(ctx, rec.BlobKey)
	if err != nil {
		// A record pointing at a missing blob is an integrity problem on
		// our side, not a 404
		zap.L().Error("Failed to read blob for existing record",
			zap.String("code", code),
			zap.Error(err))
		return nil, ErrStorageIO
	}

	key, iv, tag, err := d.Custodian.Open(rec)
	if err != nil {
		zap.L().Error("Failed to open key material",
			zap.String("code", code),
			zap.Error(err))
		return nil, ErrDecryption
	}

	plaintext, err := d.Engine.Decrypt(ciphertext, key, iv, tag)
	if err != nil {
		zap.L().Error("Stored ciphertext failed authentication",
			zap.String("code", code),
			zap.Error(err))
		return nil, ErrDecryption
	}

	// Single conditional update so concurrent downloads can't lose
	// increments, and it lands before any content leaves the server
	err = d.DB.
		Model(model.File{}).
		Where("id = ?", rec.ID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).
		Error
	if err != nil {
		zap.L().Error("Failed to increment download count",
			zap.String("code", code),
			zap.Error(err))
		return nil, ErrStorageIO
	}

	return &DownloadResult{
		Data:     plaintext,
		Filename: rec.OriginalName,
		Format:   rec.Format,
	}, nil
}

// Info returns the sanitized projection for a code. Expired files report
// ErrExpired instead of leaking their metadata
func (d *Downloader) Info(code string) (*model.FileInfo, error) {
	rec, err := d.lookup(code)
	if err != nil {
		return nil, err
	}

	return rec.Info(), nil
}

func (d *Downloader) lookup(code string) (*model.File, error) {
	var rec model.File

	err := d.DB.
		Where("code = ?", code).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		zap.L().Error("Failed to look up file record",
			zap.String("code", code),
			zap.Error(err))
		return nil, ErrStorageIO
	}

	if IsExpired(rec.ExpiresAt, time.Now()) {
		return nil, ErrExpired
	}

	return &rec, nil
}
