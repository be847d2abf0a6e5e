package api

import (
	"bitwise74/file-vault/internal/service"
	"bitwise74/file-vault/pkg/util"
	"bitwise74/file-vault/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// abortWithError translates pipeline failures into responses. Anything
// not on the list is an internal failure and stays opaque to the client
func abortWithError(c *gin.Context, requestID string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "File not found",
			"requestID": requestID,
		})

	case errors.Is(err, service.ErrExpired):
		c.AbortWithStatusJSON(http.StatusGone, gin.H{
			"error":     "This file has expired",
			"requestID": requestID,
		})

	case errors.Is(err, service.ErrPasswordRequired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":             "This file requires a password",
			"requires_password": true,
			"requestID":         requestID,
		})

	case errors.Is(err, service.ErrInvalidPassword):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid password",
			"requestID": requestID,
		})

	case errors.Is(err, validators.ErrForbiddenFileType),
		errors.Is(err, validators.ErrEmptyFile),
		errors.Is(err, validators.ErrNoFile),
		errors.Is(err, validators.ErrFileNameTooLong):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})

	case errors.Is(err, validators.ErrFileTooLarge):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})

	case errors.Is(err, util.ErrCodeExhausted):
		// Recurring exhaustion means code-space pressure or a broken
		// uniqueness check, keep it loud in the logs
		zap.L().Error("Code allocation exhausted", zap.String("requestID", requestID))

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})
	}
}
