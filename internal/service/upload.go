package service

import (
	"bitwise74/file-vault/blob"
	"bitwise74/file-vault/internal/model"
	"bitwise74/file-vault/pkg/security"
	"bitwise74/file-vault/pkg/util"
	"bitwise74/file-vault/pkg/validators"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// How often we tolerate losing the insert race on the code's unique
// index before giving up on the request
const maxInsertAttempts = 3

type Uploader struct {
	DB        *gorm.DB
	Blobs     blob.Store
	Engine    *security.Engine
	Custodian security.Custodian
	Hash      *security.FileHash
}

func NewUploader(db *gorm.DB, blobs blob.Store) *Uploader {
	return &Uploader{
		DB:        db,
		Blobs:     blobs,
		Engine:    security.NewEngine(),
		Custodian: security.InlineCustodian{},
		Hash:      security.NewFileHash(),
	}
}

type UploadRequest struct {
	UserID   string
	Filename string
	// Content-Type declared by the client, may be empty
	Format string
	Data   []byte

	// Optional download password, ignored when blank after trimming
	Password string
	// Expiry in hours. Zero or negative means "no expiry" for regular
	// uploads and "tier default" for litterbox ones
	ExpiresIn int
	// Regular uploads can opt into the long code without joining the
	// litterbox tier
	Temporary bool
}

// Upload runs the permanent-tier pipeline. The ingress has already
// bounded the payload size, the pipeline re-checks only that something
// is actually there
func (u *Uploader) Upload(ctx context.Context, req *UploadRequest) (*model.FileInfo, error) {
	codeLen := util.CodeLenShort
	if req.Temporary {
		codeLen = util.CodeLenLong
	}

	return u.run(ctx, req, codeLen, false)
}

// UploadLitterbox runs the temporary-tier pipeline: long code, expiry
// always set, defaulting to litterbox.default_hours
func (u *Uploader) UploadLitterbox(ctx context.Context, req *UploadRequest) (*model.FileInfo, error) {
	return u.run(ctx, req, util.CodeLenLong, true)
}

func (u *Uploader) run(ctx context.Context, req *UploadRequest, codeLen int, alwaysExpires bool) (*model.FileInfo, error) {
	if err := validators.CheckExtension(req.Filename); err != nil {
		return nil, err
	}

	if len(req.Data) == 0 {
		return nil, validators.ErrEmptyFile
	}

	ciphertext, key, iv, tag, err := u.Engine.Encrypt(req.Data)
	if err != nil {
		zap.L().Error("Failed to encrypt upload", zap.Error(err))
		return nil, ErrStorageIO
	}

	blobKey, err := util.BlobKey()
	if err != nil {
		zap.L().Error("Failed to generate blob key", zap.Error(err))
		return nil, ErrStorageIO
	}

	// Ciphertext goes out first. If this fails no record exists and
	// nothing needs to be undone
	if err := u.Blobs.Put(ctx, blobKey, ciphertext); err != nil {
		zap.L().Error("Failed to write blob", zap.Error(err))
		return nil, ErrStorageIO
	}

	var passwordHash *string
	if p := strings.TrimSpace(req.Password); p != "" {
		h, err := u.Hash.Generate(p)
		if err != nil {
			u.discardBlob(blobKey)
			return nil, ErrStorageIO
		}
		passwordHash = &h
	}

	now := time.Now()

	rec := &model.File{
		UserID:        req.UserID,
		BlobKey:       blobKey,
		OriginalName:  req.Filename,
		Format:        validators.DetectFormat(req.Format, req.Data),
		Size:          int64(len(req.Data)),
		PasswordHash:  passwordHash,
		DownloadCount: 0,
		Temporary:     alwaysExpires,
		CreatedAt:     now.Unix(),
		ExpiresAt:     ComputeExpiry(req.ExpiresIn, viper.GetInt("litterbox.default_hours"), alwaysExpires, now),
	}

	if err := u.Custodian.Seal(rec, key, iv, tag); err != nil {
		u.discardBlob(blobKey)
		zap.L().Error("Failed to seal key material", zap.Error(err))
		return nil, ErrStorageIO
	}

	// The existence pre-check and the insert aren't atomic, so the code's
	// unique index has the final say. Losing the race just means drawing
	// a new code and trying again
	for attempt := range maxInsertAttempts {
		rec.Code, err = util.AllocateCode(codeLen, u.codeExists)
		if err != nil {
			u.discardBlob(blobKey)
			return nil, err
		}

		err = u.DB.Create(rec).Error
		if err == nil {
			return rec.Info(), nil
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			rec.ID = 0
			zap.L().Warn("Lost code insert race, retrying",
				zap.String("code", rec.Code),
				zap.Int("attempt", attempt+1))
			continue
		}

		break
	}

	u.discardBlob(blobKey)

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrCodeExhausted
	}

	zap.L().Error("Failed to save file record to db", zap.Error(err))
	return nil, ErrStorageIO
}

func (u *Uploader) codeExists(code string) (bool, error) {
	var n int64

	err := u.DB.
		Model(model.File{}).
		Where("code = ?", code).
		Count(&n).
		Error
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// discardBlob removes a ciphertext object written for a record that never
// made it into the database
func (u *Uploader) discardBlob(key string) {
	err := u.Blobs.Delete(context.Background(), key)
	if err != nil && err != blob.ErrNotExist {
		zap.L().Error("Failed to cleanup after failed upload",
			zap.String("key", key),
			zap.Error(err))
		return
	}

	zap.L().Debug("Cleaned up after failed upload", zap.String("key", key))
}
