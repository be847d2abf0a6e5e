package api

import (
	"bitwise74/file-vault/internal/service"
	"bitwise74/file-vault/pkg/validators"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	req, ok := parseUploadForm(c, requestID, viper.GetInt64("upload.max_size"))
	if !ok {
		return
	}
	req.UserID = userID

	info, err := a.Deps.Uploader.Upload(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file": info,
		"url":  downloadURL(info.Code),
	})
}

func (a *API) LitterboxUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	req, ok := parseUploadForm(c, requestID, viper.GetInt64("litterbox.max_size"))
	if !ok {
		return
	}
	req.UserID = userID

	info, err := a.Deps.Uploader.UploadLitterbox(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file": info,
		"url":  downloadURL(info.Code),
	})
}

// downloadURL builds the public locator shared with the uploader
func downloadURL(code string) string {
	return fmt.Sprintf("https://%s/api/files/%s/download", viper.GetString("host.domain"), code)
}

// parseUploadForm turns the multipart form into an UploadRequest. The
// body size limiter has already bounded the payload, so buffering the
// file here is fine
func parseUploadForm(c *gin.Context, requestID string, maxSize int64) (*service.UploadRequest, bool) {
	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return nil, false
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err))
		return nil, false
	}

	files := form.File["file"]
	if len(files) <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return nil, false
	}

	fh := files[0]

	// The per-route body limiter caps the whole request, this checks the
	// single file against the tier limit that applies here
	code, f, err := validators.FileValidator(fh, maxSize)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read uploaded file", zap.Error(err))
		return nil, false
	}

	expiresIn, err := strconv.Atoi(c.PostForm("expires_in"))
	if err != nil {
		expiresIn = 0
	}

	temporary, err := strconv.ParseBool(c.PostForm("temporary"))
	if err != nil {
		temporary = false
	}

	return &service.UploadRequest{
		Filename:  fh.Filename,
		Format:    fh.Header.Get("Content-Type"),
		Data:      data,
		Password:  c.PostForm("password"),
		ExpiresIn: expiresIn,
		Temporary: temporary,
	}, true
}
