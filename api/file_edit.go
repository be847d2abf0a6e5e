package api

import (
	"bitwise74/file-vault/internal/model"
	"bitwise74/file-vault/internal/service"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fileEditBody struct {
	// Empty string clears the password, nil leaves it untouched
	Password *string `json:"password"`
	// Hours from now. For regular files a non-positive value clears the
	// expiry, litterbox files fall back to the tier default instead
	ExpiresIn *int `json:"expires_in"`
}

// FileEdit lets an owner change the password and expiry of a file. Key
// material and content are immutable, re-encryption means re-upload
func (a *API) FileEdit(c *gin.Context) {
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

	var body fileEditBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
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

	updates := map[string]any{}

	if body.Password != nil {
		if p := strings.TrimSpace(*body.Password); p != "" {
			hash, err := a.Deps.Uploader.Hash.Generate(p)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":     "Internal server error",
					"requestID": requestID,
				})

				zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
				return
			}
			updates["password_hash"] = hash
		} else {
			updates["password_hash"] = nil
		}
	}

	if body.ExpiresIn != nil {
		updates["expires_at"] = service.ComputeExpiry(
			*body.ExpiresIn,
			viper.GetInt("litterbox.default_hours"),
			rec.Temporary,
			time.Now(),
		)
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, rec.Info())
		return
	}

	err = a.Deps.DB.
		Model(&rec).
		Updates(updates).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Re-read so the response reflects what was persisted
	if err := a.Deps.DB.First(&rec, rec.ID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reload file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, rec.Info())
}
