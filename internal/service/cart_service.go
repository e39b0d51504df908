package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/cart"
	"github.com/uniassets/assetcart/internal/repository"
)

// CartSessions owns the live cart of every signed-in borrower.
// A cart is opened from its durable slot on first use and released on logout.
type CartSessions struct {
	mu     sync.Mutex
	stores map[string]*cart.Store

	slot      repository.CartStateRepository
	submitter cart.Submitter
	logger    *zap.Logger
	opts      []cart.Option
}

// NewCartSessions creates the session registry
func NewCartSessions(
	slot repository.CartStateRepository,
	submitter cart.Submitter,
	logger *zap.Logger,
	opts ...cart.Option,
) *CartSessions {
	return &CartSessions{
		stores:    make(map[string]*cart.Store),
		slot:      slot,
		submitter: submitter,
		logger:    logger,
		opts:      opts,
	}
}

// Acquire returns the owner's cart, opening it if needed
func (s *CartSessions) Acquire(ctx context.Context, ownerID string) *cart.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[ownerID]; ok {
		return store
	}

	store := cart.Open(ctx, ownerID, s.slot, s.submitter, s.logger, s.opts...)
	s.stores[ownerID] = store

	s.logger.Debug("Cart session opened", zap.String("owner_id", ownerID))
	return store
}

// Release drops the in-memory cart. The durable slot is kept, so the next Acquire rehydrates it.
func (s *CartSessions) Release(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stores[ownerID]; ok {
		delete(s.stores, ownerID)
		s.logger.Debug("Cart session released", zap.String("owner_id", ownerID))
	}
}

// Discard releases the cart and deletes its durable slot
func (s *CartSessions) Discard(ctx context.Context, ownerID string) error {
	s.Release(ownerID)
	if s.slot == nil {
		return nil
	}
	return s.slot.Delete(ctx, ownerID)
}

// Active returns the number of open carts
func (s *CartSessions) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.stores)
}
