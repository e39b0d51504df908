package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/backend"
	"github.com/uniassets/assetcart/pkg/errors"
)

// respondError maps domain errors to HTTP responses
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		invalidArg   *errors.ErrInvalidArgument
		notFound     *errors.ErrNotFound
		capacity     *errors.ErrCapacityExceeded
		invalidState *errors.ErrInvalidState
		submission   *errors.ErrSubmissionFailed
		unauthorized *errors.ErrUnauthorized
		apiErr       *backend.APIError
	)

	switch {
	case errors.As(err, &invalidArg):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &capacity):
		c.JSON(http.StatusConflict, gin.H{
			"error":      err.Error(),
			"product_id": capacity.ProductID,
			"requested":  capacity.Requested,
			"available":  capacity.Available,
		})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &submission):
		// Backend validation failures (e.g. stock conflicts) are the client's to fix; the rest are gateway errors.
		status := http.StatusBadGateway
		if submission.StatusCode >= 400 && submission.StatusCode < 500 &&
			submission.StatusCode != http.StatusUnauthorized && submission.StatusCode != http.StatusForbidden {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Warn("Asset backend call failed",
			zap.String("path", c.FullPath()),
			zap.Int("backend_status", apiErr.StatusCode),
			zap.String("message", apiErr.Message),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "asset service unavailable"})
	default:
		logger.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
