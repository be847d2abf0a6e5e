package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileDownload decrypts and serves a file by its public code. POST so
// the optional password travels in the body instead of the URL
func (a *API) FileDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	code := c.Param("code")
	if code == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No code provided",
			"requestID": requestID,
		})
		return
	}

	res, err := a.Deps.Downloader.Download(c.Request.Context(), code, c.PostForm("password"))
	if err != nil {
		abortWithError(c, requestID, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	c.Data(http.StatusOK, res.Format, res.Data)
}
