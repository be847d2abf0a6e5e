package internal

import (
	"bitwise74/file-vault/blob"
	"bitwise74/file-vault/internal/service"

	"gorm.io/gorm"
)

type Deps struct {
	DB         *gorm.DB
	Blobs      blob.Store
	Uploader   *service.Uploader
	Downloader *service.Downloader
}
