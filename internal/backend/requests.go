package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/domain"
)

// CreateRequestInput is the body of POST requests
type CreateRequestInput struct {
	Purpose string              `json:"purpose"`
	Notes   string              `json:"notes"`
	Items   []CreateRequestItem `json:"items"`
}

type CreateRequestItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// requestRecord is the request shape returned by the backend
type requestRecord struct {
	ID            json.Number         `json:"id"`
	RequestNumber string              `json:"request_number"`
	Status        string              `json:"status"`
	Purpose       string              `json:"purpose"`
	Items         []requestItemRecord `json:"items"`
	CreatedAt     string              `json:"created_at"`
}

type requestItemRecord struct {
	ProductID json.Number `json:"product_id"`
	Quantity  int         `json:"quantity"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// CreateRequest submits a borrowing request
func (c *Client) CreateRequest(ctx context.Context, input CreateRequestInput) (*domain.SubmittedRequest, error) {
	body, err := c.do(ctx, http.MethodPost, "requests", input)
	if err != nil {
		return nil, err
	}

	req, err := c.decodeRequest(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse create request response: %w", err)
	}

	c.logger.Info("Backend request created",
		zap.Int64("request_id", req.ID),
		zap.String("request_number", req.RequestNumber),
	)
	return req, nil
}

// GetRequest fetches a request by ID
func (c *Client) GetRequest(ctx context.Context, id int64) (*domain.SubmittedRequest, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("requests/%d", id), nil)
	if err != nil {
		return nil, err
	}

	req, err := c.decodeRequest(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse request response: %w", err)
	}
	return req, nil
}

func (c *Client) decodeRequest(body []byte) (*domain.SubmittedRequest, error) {
	var rec requestRecord
	if err := json.Unmarshal(unwrapData(body), &rec); err != nil {
		return nil, err
	}

	id, err := rec.ID.Int64()
	if err != nil {
		return nil, fmt.Errorf("response has no numeric id")
	}
	if rec.RequestNumber == "" {
		return nil, fmt.Errorf("response has no request_number")
	}

	req := &domain.SubmittedRequest{
		ID:            id,
		RequestNumber: rec.RequestNumber,
		Status:        domain.RequestStatus(strings.ToUpper(rec.Status)),
		Purpose:       rec.Purpose,
	}

	if req.Status == "" {
		req.Status = domain.RequestStatusPending
	} else if !req.Status.IsValid() {
		c.logger.Warn("Backend returned unknown request status", zap.String("status", rec.Status))
	}

	for _, item := range rec.Items {
		productID, err := item.ProductID.Int64()
		if err != nil {
			continue
		}
		req.Items = append(req.Items, domain.SubmittedRequestItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, rec.CreatedAt); err == nil {
			req.CreatedAt = &t
			break
		}
	}

	return req, nil
}
