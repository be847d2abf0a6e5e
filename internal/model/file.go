// Package model defines database models
package model

type File struct {
	ID     uint   `gorm:"primaryKey;autoIncrement;index" json:"id"`
	UserID string `json:"-"`

	// Short public identifier used in download links. The unique index
	// is what actually guarantees no two files share a code, the
	// allocator's pre-check only cuts down on insert retries
	Code string `gorm:"uniqueIndex;not null" json:"code"`

	// Key of the ciphertext object in the blob store. The .enc suffix
	// marks the object as encrypted at rest
	BlobKey string `json:"-"`

	// Original file name before turning it into a blob key
	OriginalName string `json:"name"`
	Format       string `json:"format"`
	Size         int64  `json:"size"`

	// Per-file key material, hex encoded. Set once at creation, all
	// three together, never touched afterwards
	EncryptionKey string `json:"-"`
	EncryptionIV  string `json:"-"`
	AuthTag       string `json:"-"`

	// nil means the file is downloadable without a secret
	PasswordHash *string `json:"-"`

	DownloadCount int64 `json:"download_count"`

	// Litterbox uploads always expire and get the long code
	Temporary bool `json:"temporary"`

	// Unix second timestamps. A nil ExpiresAt means the file never expires
	CreatedAt int64  `gorm:"not null" json:"created_at"`
	ExpiresAt *int64 `json:"expires_at,omitzero"`
}

// FileInfo is the projection of a File that's safe to hand to anyone.
// No key material, no blob key
type FileInfo struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	Size              int64  `json:"size"`
	Format            string `json:"format"`
	PasswordProtected bool   `json:"password_protected"`
	DownloadCount     int64  `json:"download_count"`
	CreatedAt         int64  `json:"created_at"`
	ExpiresAt         *int64 `json:"expires_at,omitzero"`
}

func (f *File) Info() *FileInfo {
	return &FileInfo{
		Code:              f.Code,
		Name:              f.OriginalName,
		Size:              f.Size,
		Format:            f.Format,
		PasswordProtected: f.PasswordHash != nil,
		DownloadCount:     f.DownloadCount,
		CreatedAt:         f.CreatedAt,
		ExpiresAt:         f.ExpiresAt,
	}
}
