package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/uniassets/assetcart/internal/domain"
)

// CartStateRepository is a durable slot holding one serialized cart per owner.
// Get returns *errors.ErrNotFound when the owner has no saved cart.
type CartStateRepository interface {
	Get(ctx context.Context, ownerID string) ([]byte, error)
	Save(ctx context.Context, ownerID string, state []byte) error
	Delete(ctx context.Context, ownerID string) error
}

// BorrowerRepository looks up and stores API borrowers.
// GetByAPIKey selects by domain.APIKeyLookup and then verifies the bcrypt hash.
type BorrowerRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Borrower, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Borrower, error)
	Create(ctx context.Context, borrower *domain.Borrower) error
	Update(ctx context.Context, borrower *domain.Borrower) error
}

// BorrowerRequestRepository records which borrower created which backend request.
// Get returns *errors.ErrNotFound when the request does not belong to the borrower.
type BorrowerRequestRepository interface {
	Create(ctx context.Context, req *domain.BorrowerRequest) error
	Get(ctx context.Context, borrowerID uuid.UUID, requestID int64) (*domain.BorrowerRequest, error)
	UpdateStatus(ctx context.Context, borrowerID uuid.UUID, requestID int64, status domain.RequestStatus) error
}

// Repositories groups the storage dependencies of the service
type Repositories struct {
	CartState CartStateRepository
	Borrower  BorrowerRepository
	Request   BorrowerRequestRepository
}
