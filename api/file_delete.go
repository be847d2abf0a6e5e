package api

import (
	"bitwise74/file-vault/blob"
	"bitwise74/file-vault/internal/model"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileDelete removes an owned file. The blob goes first so a half-done
// delete can never leave a record whose downloads would 500 forever; a
// dangling blob with no record is cheap and harmless by comparison
func (a *API) FileDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	code := c.Param("code")
	if code == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No code provided",
			"requestID": requestID,
		})
		return
	}

	var rec model.File

	err := a.Deps.DB.
		Where("user_id = ? AND code = ?", userID, code).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.Deps.Blobs.Delete(c.Request.Context(), rec.BlobKey)
	if err != nil && err != blob.ErrNotExist {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete blob", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.Deps.DB.
		Delete(model.File{}, rec.ID).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusOK)
}
