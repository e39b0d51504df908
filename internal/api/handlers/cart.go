package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/api/middleware"
	"github.com/uniassets/assetcart/internal/cart"
	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/internal/service"
	"github.com/uniassets/assetcart/pkg/errors"
)

// ProductResolver resolves a product ID to the snapshot stored in a cart line
type ProductResolver interface {
	ResolveBorrowable(ctx context.Context, productID string) (*domain.CatalogItem, error)
}

// SubmitResponse is returned after a successful submission
type SubmitResponse struct {
	ID            int64                `json:"id"`
	RequestNumber string               `json:"request_number"`
	Status        domain.RequestStatus `json:"status"`
}

// cartFor returns the authenticated borrower's cart, writing 401 when there is none
func cartFor(c *gin.Context, sessions *service.CartSessions) (*cart.Store, bool) {
	borrower, ok := middleware.GetBorrowerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return sessions.Acquire(c.Request.Context(), borrower.ID.String()), true
}

func bindingFailed(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation failed",
		"details": err.Error(),
	})
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(sessions *service.CartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := cartFor(c, sessions)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, service.NewCartResponse(store))
	}
}

// HandleAddItem handles POST /v1/cart/items
func HandleAddItem(sessions *service.CartSessions, products ProductResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := cartFor(c, sessions)
		if !ok {
			return
		}

		var req service.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingFailed(c, err)
			return
		}

		ctx := c.Request.Context()
		product, err := products.ResolveBorrowable(ctx, req.ProductID.String())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		var line domain.CartLine
		if req.Mode == service.AddModeSet {
			line, err = store.SetItemQuantity(ctx, *product, req.Quantity, req.Period.ToDomain())
		} else {
			line, err = store.AddItem(ctx, *product, req.Quantity, req.Period.ToDomain())
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"line": line,
			"cart": service.NewCartResponse(store),
		})
	}
}

// HandleUpdateLine handles PATCH /v1/cart/items/:lineId.
// Inputs are validated first; a quantity of zero or less removes the line and ignores the other fields.
func HandleUpdateLine(sessions *service.CartSessions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := cartFor(c, sessions)
		if !ok {
			return
		}

		var req service.UpdateLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingFailed(c, err)
			return
		}

		ctx := c.Request.Context()
		lineID := c.Param("lineId")

		if req.Quantity != nil && *req.Quantity <= 0 {
			if err := store.UpdateQuantity(ctx, lineID, *req.Quantity); err != nil {
				respondError(c, logger, err)
				return
			}
			c.JSON(http.StatusOK, service.NewCartResponse(store))
			return
		}

		var priority domain.Priority
		if req.Priority != nil {
			p, valid := domain.ParsePriority(*req.Priority)
			if !valid {
				respondError(c, logger, &errors.ErrInvalidArgument{Field: "priority", Message: "must be one of LOW, NORMAL, HIGH, URGENT"})
				return
			}
			priority = p
		}

		var period domain.RequestPeriod
		if req.Period != nil {
			p, err := cart.NormalizePeriod(*req.Period.ToDomain())
			if err != nil {
				respondError(c, logger, err)
				return
			}
			period = p
		}

		var steps []func() error
		if req.Quantity != nil {
			steps = append(steps, func() error { return store.UpdateQuantity(ctx, lineID, *req.Quantity) })
		}
		if req.Purpose != nil {
			steps = append(steps, func() error { return store.UpdateItemPurpose(ctx, lineID, *req.Purpose) })
		}
		if req.Notes != nil {
			steps = append(steps, func() error { return store.UpdateItemNotes(ctx, lineID, *req.Notes) })
		}
		if req.Priority != nil {
			steps = append(steps, func() error { return store.UpdateItemPriority(ctx, lineID, priority) })
		}
		if req.Period != nil {
			steps = append(steps, func() error { return store.UpdateItemPeriod(ctx, lineID, period) })
		}
		if len(steps) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		for _, step := range steps {
			if err := step(); err != nil {
				respondError(c, logger, err)
				return
			}
		}

		c.JSON(http.StatusOK, service.NewCartResponse(store))
	}
}

// HandleRemoveLine handles DELETE /v1/cart/items/:lineId
func HandleRemoveLine(sessions *service.CartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := cartFor(c, sessions)
		if !ok {
			return
		}
		store.RemoveItem(c.Request.Context(), c.Param("lineId"))
		c.JSON(http.StatusOK, service.NewCartResponse(store))
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(sessions *service.CartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := cartFor(c, sessions)
		if !ok {
			return
		}
		store.ClearCart(c.Request.Context())
		c.JSON(http.StatusOK, service.NewCartResponse(store))
	}
}

// HandleUpdateRequestInfo handles PUT /v1/cart/request
func HandleUpdateRequestInfo(sessions *service.CartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := cartFor(c, sessions)
		if !ok {
			return
		}

		var req service.RequestInfoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingFailed(c, err)
			return
		}

		ctx := c.Request.Context()
		if req.Purpose != nil {
			store.UpdateGlobalPurpose(ctx, *req.Purpose)
		}
		if req.Notes != nil {
			store.UpdateGlobalNotes(ctx, *req.Notes)
		}

		c.JSON(http.StatusOK, service.NewCartResponse(store))
	}
}

// HandleGetProductInCart handles GET /v1/cart/products/:productId
func HandleGetProductInCart(sessions *service.CartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := cartFor(c, sessions)
		if !ok {
			return
		}

		productID := c.Param("productId")
		resp := gin.H{
			"product_id": productID,
			"in_cart":    store.IsInCart(productID),
			"quantity":   store.ItemQuantity(productID),
		}
		if line, found := store.CartItem(productID); found {
			resp["line"] = line
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleSubmitCart handles POST /v1/cart/submit
func HandleSubmitCart(sessions *service.CartSessions, requests RequestTracker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		borrower, ok := middleware.GetBorrowerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		store := sessions.Acquire(c.Request.Context(), borrower.ID.String())

		created, err := store.SubmitRequest(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		// The request exists in the backend either way; don't fail the response
		if err := requests.Track(c.Request.Context(), borrower.ID, created); err != nil {
			logger.Error("Failed to record submitted request",
				zap.String("borrower_id", borrower.ID.String()),
				zap.Int64("request_id", created.ID),
				zap.Error(err),
			)
		}

		c.JSON(http.StatusCreated, SubmitResponse{
			ID:            created.ID,
			RequestNumber: created.RequestNumber,
			Status:        created.Status,
		})
	}
}

// HandleLogout handles POST /v1/session/logout
func HandleLogout(sessions *service.CartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		borrower, ok := middleware.GetBorrowerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		sessions.Release(borrower.ID.String())
		c.Status(http.StatusNoContent)
	}
}
