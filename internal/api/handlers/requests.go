package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/api/middleware"
	"github.com/uniassets/assetcart/internal/domain"
)

// RequestTracker records and looks up the requests a borrower has submitted
type RequestTracker interface {
	Track(ctx context.Context, borrowerID uuid.UUID, req *domain.SubmittedRequest) error
	Get(ctx context.Context, borrowerID uuid.UUID, requestID int64) (*domain.SubmittedRequest, error)
}

// RequestResponse represents the request response
type RequestResponse struct {
	ID            int64                 `json:"id"`
	RequestNumber string                `json:"request_number"`
	Status        domain.RequestStatus  `json:"status"`
	Terminal      bool                  `json:"terminal"`
	Purpose       string                `json:"purpose,omitempty"`
	Items         []RequestItemResponse `json:"items"`
	CreatedAt     string                `json:"created_at,omitempty"`
}

type RequestItemResponse struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// HandleGetRequest handles GET /v1/requests/:id
func HandleGetRequest(requests RequestTracker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		borrower, ok := middleware.GetBorrowerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || requestID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request ID"})
			return
		}

		req, err := requests.Get(c.Request.Context(), borrower.ID, requestID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		items := make([]RequestItemResponse, len(req.Items))
		for i, item := range req.Items {
			items[i] = RequestItemResponse{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			}
		}

		response := RequestResponse{
			ID:            req.ID,
			RequestNumber: req.RequestNumber,
			Status:        req.Status,
			Terminal:      req.Status.IsTerminal(),
			Purpose:       req.Purpose,
			Items:         items,
		}
		if req.CreatedAt != nil {
			response.CreatedAt = req.CreatedAt.Format(time.RFC3339)
		}

		c.JSON(http.StatusOK, response)
	}
}
