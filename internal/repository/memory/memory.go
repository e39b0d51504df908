// Package memory provides in-process repositories for tests and single-node development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/internal/repository"
	"github.com/uniassets/assetcart/pkg/errors"
)

// CartStateRepository keeps serialized carts in a map
type CartStateRepository struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewCartStateRepository() *CartStateRepository {
	return &CartStateRepository{carts: make(map[string][]byte)}
}

func (r *CartStateRepository) Get(_ context.Context, ownerID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.carts[ownerID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "cart", ID: ownerID}
	}
	return append([]byte(nil), state...), nil
}

func (r *CartStateRepository) Save(_ context.Context, ownerID string, state []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[ownerID] = append([]byte(nil), state...)
	return nil
}

func (r *CartStateRepository) Delete(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, ownerID)
	return nil
}

// BorrowerRepository keeps borrowers in a map
type BorrowerRepository struct {
	mu        sync.RWMutex
	borrowers map[uuid.UUID]domain.Borrower
}

func NewBorrowerRepository() *BorrowerRepository {
	return &BorrowerRepository{borrowers: make(map[uuid.UUID]domain.Borrower)}
}

func (r *BorrowerRepository) GetByAPIKey(_ context.Context, apiKey string) (*domain.Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lookup := domain.APIKeyLookup(apiKey)
	for _, b := range r.borrowers {
		if !b.IsActive || b.APIKeyLookup != lookup {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(b.APIKeyHash), []byte(apiKey)) != nil {
			break
		}
		borrower := b
		return &borrower, nil
	}
	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r *BorrowerRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.borrowers[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "borrower", ID: id.String()}
	}
	return &b, nil
}

func (r *BorrowerRepository) Create(_ context.Context, borrower *domain.Borrower) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if borrower.ID == uuid.Nil {
		borrower.ID = uuid.New()
	}
	if borrower.CreatedAt.IsZero() {
		borrower.CreatedAt = now
	}
	if borrower.UpdatedAt.IsZero() {
		borrower.UpdatedAt = now
	}
	r.borrowers[borrower.ID] = *borrower
	return nil
}

func (r *BorrowerRepository) Update(_ context.Context, borrower *domain.Borrower) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.borrowers[borrower.ID]; !ok {
		return &errors.ErrNotFound{Resource: "borrower", ID: borrower.ID.String()}
	}
	borrower.UpdatedAt = time.Now()
	r.borrowers[borrower.ID] = *borrower
	return nil
}

type borrowerRequestKey struct {
	borrowerID uuid.UUID
	requestID  int64
}

// BorrowerRequestRepository keeps request ownership in a map
type BorrowerRequestRepository struct {
	mu       sync.RWMutex
	requests map[borrowerRequestKey]domain.BorrowerRequest
}

func NewBorrowerRequestRepository() *BorrowerRequestRepository {
	return &BorrowerRequestRepository{requests: make(map[borrowerRequestKey]domain.BorrowerRequest)}
}

func (r *BorrowerRequestRepository) Create(_ context.Context, req *domain.BorrowerRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := borrowerRequestKey{req.BorrowerID, req.RequestID}
	if _, ok := r.requests[key]; ok {
		return nil
	}

	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	r.requests[key] = *req
	return nil
}

func (r *BorrowerRequestRepository) Get(_ context.Context, borrowerID uuid.UUID, requestID int64) (*domain.BorrowerRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[borrowerRequestKey{borrowerID, requestID}]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "request", ID: fmt.Sprintf("%d", requestID)}
	}
	return &req, nil
}

func (r *BorrowerRequestRepository) UpdateStatus(_ context.Context, borrowerID uuid.UUID, requestID int64, status domain.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := borrowerRequestKey{borrowerID, requestID}
	req, ok := r.requests[key]
	if !ok {
		return &errors.ErrNotFound{Resource: "request", ID: fmt.Sprintf("%d", requestID)}
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	r.requests[key] = req
	return nil
}

// NewRepositories creates in-memory repositories
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		CartState: NewCartStateRepository(),
		Borrower:  NewBorrowerRepository(),
		Request:   NewBorrowerRequestRepository(),
	}
}
