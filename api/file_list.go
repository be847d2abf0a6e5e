package api

import (
	"bitwise74/file-vault/internal/model"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileList returns all non-expired files owned by the caller
func (a *API) FileList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var files []model.File

	err := a.Deps.DB.
		Where("user_id = ?", userID).
		Where("expires_at IS NULL OR expires_at >= ?", time.Now().Unix()).
		Order("created_at DESC").
		Find(&files).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list user files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	infos := make([]*model.FileInfo, len(files))
	for i := range files {
		infos[i] = files[i].Info()
	}

	c.JSON(http.StatusOK, gin.H{
		"files": infos,
	})
}
