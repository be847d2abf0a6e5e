package service

import (
	"bitwise74/file-vault/blob"
	"bitwise74/file-vault/internal/model"
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ComputeExpiry resolves the expiry timestamp for a new upload. Regular
// uploads only expire when the user asked for it with a positive hour
// count. Litterbox uploads always expire, bad or missing input falls back
// to defaultHours. There's deliberately no upper bound on hours
func ComputeExpiry(hours, defaultHours int, alwaysExpires bool, now time.Time) *int64 {
	if hours <= 0 {
		if !alwaysExpires {
			return nil
		}
		hours = defaultHours
	}

	ts := now.Add(time.Duration(hours) * time.Hour).Unix()
	return &ts
}

// IsExpired is a strict comparison, a file whose expiry equals now is
// still downloadable
func IsExpired(expiresAt *int64, now time.Time) bool {
	return expiresAt != nil && *expiresAt < now.Unix()
}

// Grace period before the sweeper physically removes lapsed files. The
// download path already refuses them the second they expire, this just
// keeps storage from filling up with dead ciphertext
const sweepGrace = time.Hour

// ExpiredCleanup periodically deletes blobs and records of files whose
// expiry lapsed more than a grace period ago
func ExpiredCleanup(t time.Duration, db *gorm.DB, blobs blob.Store) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Expired file cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			var lapsed []model.File

			err := db.
				Where("expires_at IS NOT NULL AND expires_at < ?", time.Now().Add(-sweepGrace).Unix()).
				Find(&lapsed).
				Error
			if err != nil {
				zap.L().Error("Failed to query db for expired files", zap.Error(err))
				continue
			}

			for _, f := range lapsed {
				err := blobs.Delete(context.Background(), f.BlobKey)
				if err != nil && err != blob.ErrNotExist {
					zap.L().Error("Failed to delete expired blob",
						zap.String("code", f.Code),
						zap.Error(err))
					continue
				}

				err = db.Delete(model.File{}, f.ID).Error
				if err != nil {
					zap.L().Error("Failed to delete expired record",
						zap.String("code", f.Code),
						zap.Error(err))
					continue
				}

				zap.L().Debug("Swept expired file", zap.String("code", f.Code))
			}
		}
	}()
}
