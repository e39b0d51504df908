package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/backend"
	"github.com/uniassets/assetcart/internal/cart"
	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/pkg/errors"
)

// RequestCreator is the backend call the adapter wraps
type RequestCreator interface {
	CreateRequest(ctx context.Context, input backend.CreateRequestInput) (*domain.SubmittedRequest, error)
}

type requestAdapter struct {
	creator RequestCreator
	logger  *zap.Logger
}

// NewRequestAdapter creates the cart.Submitter that sends carts to the backend
func NewRequestAdapter(creator RequestCreator, logger *zap.Logger) *requestAdapter {
	return &requestAdapter{
		creator: creator,
		logger:  logger,
	}
}

// Submit translates a cart submission into the backend payload and creates the request.
// All failures are returned as *errors.ErrSubmissionFailed. There are no retries.
func (a *requestAdapter) Submit(ctx context.Context, submission cart.Submission) (*domain.SubmittedRequest, error) {
	input, err := buildCreateRequestInput(submission)
	if err != nil {
		return nil, &errors.ErrSubmissionFailed{Message: err.Error(), Err: err}
	}

	created, err := a.creator.CreateRequest(ctx, input)
	if err != nil {
		if apiErr, ok := err.(*backend.APIError); ok {
			return nil, &errors.ErrSubmissionFailed{
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
				Err:        apiErr,
			}
		}
		a.logger.Error("Failed to create request", zap.Error(err))
		return nil, &errors.ErrSubmissionFailed{Message: "could not reach the asset service", Err: err}
	}

	return created, nil
}

func buildCreateRequestInput(submission cart.Submission) (backend.CreateRequestInput, error) {
	items := make([]backend.CreateRequestItem, 0, len(submission.Items))
	for _, item := range submission.Items {
		productID, err := strconv.ParseInt(strings.TrimSpace(item.ProductID), 10, 64)
		if err != nil {
			return backend.CreateRequestInput{}, fmt.Errorf("product %q has no numeric ID", item.ProductID)
		}
		items = append(items, backend.CreateRequestItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	return backend.CreateRequestInput{
		Purpose: strings.TrimSpace(submission.Purpose),
		Notes:   strings.TrimSpace(submission.Notes),
		Items:   items,
	}, nil
}
