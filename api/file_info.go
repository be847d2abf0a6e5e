package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileInfo returns the public projection of a file without its content.
// Expired files answer 410 instead of leaking their metadata
func (a *API) FileInfo(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	code := c.Param("code")
	if code == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No code provided",
			"requestID": requestID,
		})
		return
	}

	info, err := a.Deps.Downloader.Info(code)
	if err != nil {
		abortWithError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
