// Package service implements the upload and download pipelines around the
// encrypted blob store
package service

import "errors"

// Failure kinds the pipelines hand back to the API layer. Handlers map
// these to status codes; anything not in this list is treated as an
// internal error and surfaced opaquely
var (
	ErrNotFound         = errors.New("file not found")
	ErrExpired          = errors.New("file has expired")
	ErrPasswordRequired = errors.New("a password is required to download this file")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrStorageIO        = errors.New("storage operation failed")
	ErrDecryption       = errors.New("stored file failed integrity check")
)
