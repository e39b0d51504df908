package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/internal/repository"
)

const borrowerContextKey = "borrower"

// AuthMiddleware authenticates the bearer API key and stores the borrower in the context
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		apiKey := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || apiKey == "" || apiKey == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		borrower, err := repos.Borrower.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			logger.Debug("Authentication failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(borrowerContextKey, borrower)
		c.Next()
	}
}

// GetBorrowerFromContext returns the authenticated borrower
func GetBorrowerFromContext(c *gin.Context) (*domain.Borrower, bool) {
	v, ok := c.Get(borrowerContextKey)
	if !ok {
		return nil, false
	}
	borrower, ok := v.(*domain.Borrower)
	return borrower, ok && borrower != nil
}
