package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/pkg/errors"
)

type borrowerRequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBorrowerRequestRepository creates a new borrower request repository
func NewBorrowerRequestRepository(db *sql.DB, logger *zap.Logger) *borrowerRequestRepository {
	return &borrowerRequestRepository{
		db:     db,
		logger: logger,
	}
}

func (r *borrowerRequestRepository) Create(ctx context.Context, req *domain.BorrowerRequest) error {
	query := `
		INSERT INTO borrower_requests (borrower_id, request_id, request_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (borrower_id, request_id) DO NOTHING
	`

	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		req.BorrowerID,
		req.RequestID,
		req.RequestNumber,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to record borrower request", zap.Error(err))
		return err
	}

	return nil
}

func (r *borrowerRequestRepository) Get(ctx context.Context, borrowerID uuid.UUID, requestID int64) (*domain.BorrowerRequest, error) {
	query := `
		SELECT borrower_id, request_id, request_number, status, created_at, updated_at
		FROM borrower_requests
		WHERE borrower_id = $1 AND request_id = $2
	`

	var req domain.BorrowerRequest
	err := r.db.QueryRowContext(ctx, query, borrowerID, requestID).Scan(
		&req.BorrowerID,
		&req.RequestID,
		&req.RequestNumber,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "request", ID: fmt.Sprintf("%d", requestID)}
	}
	if err != nil {
		r.logger.Error("Failed to get borrower request", zap.Error(err))
		return nil, err
	}

	return &req, nil
}

func (r *borrowerRequestRepository) UpdateStatus(ctx context.Context, borrowerID uuid.UUID, requestID int64, status domain.RequestStatus) error {
	query := `
		UPDATE borrower_requests
		SET status = $3, updated_at = $4
		WHERE borrower_id = $1 AND request_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, borrowerID, requestID, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update borrower request status", zap.Error(err))
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &errors.ErrNotFound{Resource: "request", ID: fmt.Sprintf("%d", requestID)}
	}

	return nil
}
