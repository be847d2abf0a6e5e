// Package validators holds input validation shared between the API layer
// and the upload pipeline
package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile            = errors.New("no file provided")
	ErrEmptyFile         = errors.New("file is empty")
	ErrFileTooLarge      = errors.New("file too large")
	ErrFileNameTooLong   = errors.New("file name is too long")
	ErrForbiddenFileType = errors.New("this file type is not allowed")
)

const maxFileNameSize = 255

// Extensions that are never accepted no matter what Content-Type the
// client declares
var forbiddenExts = []string{".exe", ".scr", ".cpl", ".jar", ".doc", ".docx", ".docm"}

// CheckExtension rejects file names whose extension is on the denylist.
// Matching is on the name alone, a spoofed MIME type doesn't help
func CheckExtension(filename string) error {
	ext := strings.ToLower(path.Ext(filename))
	for _, bad := range forbiddenExts {
		if ext == bad {
			return ErrForbiddenFileType
		}
	}

	return nil
}

// FileValidator runs the cheap ingress checks on an uploaded file before
// the pipeline touches it. Returns the http status to respond with when
// validation fails
func FileValidator(fh *multipart.FileHeader, maxSize int64) (int, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	if fh.Size <= 0 {
		return http.StatusBadRequest, nil, ErrEmptyFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, ErrFileNameTooLong
	}

	if fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, ErrFileTooLarge
	}

	if err := CheckExtension(fh.Filename); err != nil {
		return http.StatusBadRequest, nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	return 0, f, nil
}

// DetectFormat trusts the declared Content-Type when present and falls
// back to sniffing the payload when the client didn't send one
func DetectFormat(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	return mimetype.Detect(data).String()
}
