package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/internal/repository"
	"github.com/uniassets/assetcart/pkg/errors"
)

// RequestFetcher looks up a request on the asset backend
type RequestFetcher interface {
	GetRequest(ctx context.Context, id int64) (*domain.SubmittedRequest, error)
}

// RequestService scopes backend requests to the borrower who created them
type RequestService struct {
	fetcher RequestFetcher
	owned   repository.BorrowerRequestRepository
	logger  *zap.Logger
}

// NewRequestService creates a new request service
func NewRequestService(fetcher RequestFetcher, owned repository.BorrowerRequestRepository, logger *zap.Logger) *RequestService {
	return &RequestService{
		fetcher: fetcher,
		owned:   owned,
		logger:  logger,
	}
}

// Track records that borrowerID created req
func (s *RequestService) Track(ctx context.Context, borrowerID uuid.UUID, req *domain.SubmittedRequest) error {
	status := req.Status
	if status == "" {
		status = domain.RequestStatusPending
	}

	return s.owned.Create(ctx, &domain.BorrowerRequest{
		BorrowerID:    borrowerID,
		RequestID:     req.ID,
		RequestNumber: req.RequestNumber,
		Status:        status,
	})
}

// Get fetches a request the borrower created. Requests of other borrowers are *errors.ErrNotFound.
//
// The backend's status is returned as is. A change the workflow does not allow is logged, and the
// recorded status follows the backend either way.
func (s *RequestService) Get(ctx context.Context, borrowerID uuid.UUID, requestID int64) (*domain.SubmittedRequest, error) {
	owned, err := s.owned.Get(ctx, borrowerID, requestID)
	if err != nil {
		return nil, err
	}

	req, err := s.fetcher.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.Status == owned.Status {
		return req, nil
	}

	if !owned.Status.CanTransitionTo(req.Status) {
		s.logger.Warn("Backend reported an unexpected request status change",
			zap.Int64("request_id", requestID),
			zap.Error(&errors.ErrInvalidStateTransition{From: owned.Status, To: req.Status}),
		)
	}

	if err := s.owned.UpdateStatus(ctx, borrowerID, requestID, req.Status); err != nil {
		s.logger.Warn("Failed to record request status",
			zap.Int64("request_id", requestID),
			zap.Error(err),
		)
	}

	return req, nil
}
