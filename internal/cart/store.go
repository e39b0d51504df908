// Package cart holds the per-borrower borrowing cart: the selected catalog items, request-level
// purpose and notes, and the submission of the cart as a request to the asset backend.
//
// A Store is created for one owner, rehydrated from a durable slot, and persists itself back to the
// slot after every mutation. Quantities are checked against the stock snapshot captured when a product
// was added; the backend remains the final arbiter of availability at submission time.
package cart

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/internal/repository"
	"github.com/uniassets/assetcart/pkg/errors"
)

// DefaultPeriodDays is the length of the request period given to new lines
const DefaultPeriodDays = 7

// Store is the authoritative cart for one owner. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state domain.CartState

	ownerID    string
	slot       repository.CartStateRepository
	submitter  Submitter
	logger     *zap.Logger
	now        func() time.Time
	newLineID  func() string
	periodDays int
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for AddedAt and default periods
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLineIDGenerator overrides line ID generation
func WithLineIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newLineID = gen }
}

// WithDefaultPeriodDays sets the period length for lines added without one
func WithDefaultPeriodDays(days int) Option {
	return func(s *Store) {
		if days > 0 {
			s.periodDays = days
		}
	}
}

// Open creates the store for ownerID and rehydrates it from slot.
// A missing or unreadable saved cart yields an empty cart. slot may be nil for a purely in-memory cart.
func Open(
	ctx context.Context,
	ownerID string,
	slot repository.CartStateRepository,
	submitter Submitter,
	logger *zap.Logger,
	opts ...Option,
) *Store {
	s := &Store{
		state:      domain.CartState{Lines: []domain.CartLine{}},
		ownerID:    ownerID,
		slot:       slot,
		submitter:  submitter,
		logger:     logger.With(zap.String("owner_id", ownerID)),
		now:        time.Now,
		newLineID:  uuid.NewString,
		periodDays: DefaultPeriodDays,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rehydrate(ctx)
	return s
}

// OwnerID returns the owner this cart belongs to
func (s *Store) OwnerID() string {
	return s.ownerID
}

func (s *Store) rehydrate(ctx context.Context) {
	if s.slot == nil {
		return
	}

	raw, err := s.slot.Get(ctx, s.ownerID)
	if err != nil {
		var notFound *errors.ErrNotFound
		if !errors.As(err, &notFound) {
			s.logger.Warn("Failed to load saved cart, starting empty", zap.Error(err))
		}
		return
	}

	var saved domain.CartState
	if err := json.Unmarshal(raw, &saved); err != nil {
		s.logger.Warn("Saved cart is corrupt, starting empty", zap.Error(err))
		return
	}

	lines := make([]domain.CartLine, 0, len(saved.Lines))
	seen := make(map[string]bool, len(saved.Lines))
	byProduct := make(map[string]int, len(saved.Lines))
	repaired := false
	for _, line := range saved.Lines {
		if line.ID == "" || line.Product.ID == "" || line.Quantity <= 0 || line.Product.Stock <= 0 || seen[line.ID] {
			repaired = true
			continue
		}
		seen[line.ID] = true
		if !line.Priority.IsValid() {
			line.Priority = domain.PriorityNormal
		}

		// Duplicate product lines fold into the first one, capped at its stock snapshot.
		if idx, ok := byProduct[line.Product.ID]; ok {
			kept := &lines[idx]
			kept.Quantity = addCapped(kept.Quantity, line.Quantity, kept.Product.Stock)
			repaired = true
			continue
		}
		if line.Quantity > line.Product.Stock {
			line.Quantity = line.Product.Stock
			repaired = true
		}

		byProduct[line.Product.ID] = len(lines)
		lines = append(lines, line)
	}
	if repaired {
		s.logger.Warn("Saved cart had invalid lines, repaired on load",
			zap.Int("saved_lines", len(saved.Lines)),
			zap.Int("kept_lines", len(lines)),
		)
	}

	s.state = domain.CartState{
		Lines:   lines,
		Purpose: saved.Purpose,
		Notes:   saved.Notes,
	}
}

// persistLocked writes the cart to the slot. Failures are logged and do not fail the mutation.
func (s *Store) persistLocked(ctx context.Context) {
	if s.slot == nil {
		return
	}

	raw, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Warn("Failed to encode cart", zap.Error(err))
		return
	}
	if err := s.slot.Save(ctx, s.ownerID, raw); err != nil {
		s.logger.Warn("Failed to persist cart", zap.Error(err))
	}
}

// AddItem adds quantity of product to the cart. An existing line for the product accumulates.
// period may be nil to use the default period for new lines.
func (s *Store) AddItem(ctx context.Context, product domain.CatalogItem, quantity int, period *domain.RequestPeriod) (domain.CartLine, error) {
	return s.upsert(ctx, product, quantity, period, true)
}

// SetItemQuantity sets the product's line quantity, creating the line if needed
func (s *Store) SetItemQuantity(ctx context.Context, product domain.CatalogItem, quantity int, period *domain.RequestPeriod) (domain.CartLine, error) {
	return s.upsert(ctx, product, quantity, period, false)
}

// upsert is the single capacity-checked entry point behind AddItem and SetItemQuantity
func (s *Store) upsert(
	ctx context.Context,
	product domain.CatalogItem,
	quantity int,
	period *domain.RequestPeriod,
	cumulative bool,
) (domain.CartLine, error) {
	if product.ID == "" {
		return domain.CartLine{}, &errors.ErrInvalidArgument{Field: "product_id", Message: "is required"}
	}
	if quantity < 1 {
		return domain.CartLine{}, &errors.ErrInvalidArgument{Field: "quantity", Message: "must be at least 1"}
	}
	if product.Stock < 0 {
		return domain.CartLine{}, &errors.ErrInvalidArgument{Field: "stock", Message: "cannot be negative"}
	}

	var normalized *domain.RequestPeriod
	if period != nil {
		p, err := NormalizePeriod(*period)
		if err != nil {
			return domain.CartLine{}, err
		}
		normalized = &p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idleLocked(); err != nil {
		return domain.CartLine{}, err
	}

	idx := s.indexOfProductLocked(product.ID)

	existing := 0
	if cumulative && idx >= 0 {
		existing = s.state.Lines[idx].Quantity
	}
	// Both operands are non-negative, so the subtraction cannot overflow.
	if quantity > product.Stock-existing {
		requested := math.MaxInt
		if quantity <= math.MaxInt-existing {
			requested = existing + quantity
		}
		return domain.CartLine{}, &errors.ErrCapacityExceeded{
			ProductID: product.ID,
			Requested: requested,
			Available: product.Stock,
		}
	}
	newQuantity := existing + quantity

	if idx >= 0 {
		line := &s.state.Lines[idx]
		line.Quantity = newQuantity
		line.Product = product
		if normalized != nil {
			line.Period = *normalized
		}
		s.persistLocked(ctx)
		return *line, nil
	}

	now := s.now()
	line := domain.CartLine{
		ID:       s.newLineID(),
		Product:  product,
		Quantity: newQuantity,
		Period:   domain.NewRequestPeriod(now, s.periodDays),
		Priority: domain.PriorityNormal,
		AddedAt:  now,
	}
	if normalized != nil {
		line.Period = *normalized
	}

	s.state.Lines = append(s.state.Lines, line)
	s.persistLocked(ctx)

	s.logger.Debug("Cart line added",
		zap.String("line_id", line.ID),
		zap.String("product_id", product.ID),
		zap.Int("quantity", newQuantity),
	)
	return line, nil
}

// RemoveItem deletes a line. Removing an absent line is a no-op.
func (s *Store) RemoveItem(ctx context.Context, lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeLocked(lineID) {
		s.persistLocked(ctx)
	}
}

func (s *Store) removeLocked(lineID string) bool {
	idx := s.indexOfLineLocked(lineID)
	if idx < 0 {
		return false
	}
	s.state.Lines = append(s.state.Lines[:idx], s.state.Lines[idx+1:]...)
	return true
}

// UpdateQuantity replaces a line's quantity. Zero or negative removes the line.
// The new quantity is checked against the line's stock snapshot.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		s.RemoveItem(ctx, lineID)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idleLocked(); err != nil {
		return err
	}
	line, err := s.lineLocked(lineID)
	if err != nil {
		return err
	}
	if quantity > line.Product.Stock {
		return &errors.ErrCapacityExceeded{
			ProductID: line.Product.ID,
			Requested: quantity,
			Available: line.Product.Stock,
		}
	}

	line.Quantity = quantity
	s.persistLocked(ctx)
	return nil
}

// UpdateItemPurpose sets a line's own purpose text
func (s *Store) UpdateItemPurpose(ctx context.Context, lineID, purpose string) error {
	return s.updateLine(ctx, lineID, func(line *domain.CartLine) error {
		line.Purpose = purpose
		return nil
	})
}

// UpdateItemNotes sets a line's own notes text
func (s *Store) UpdateItemNotes(ctx context.Context, lineID, notes string) error {
	return s.updateLine(ctx, lineID, func(line *domain.CartLine) error {
		line.Notes = notes
		return nil
	})
}

// UpdateItemPeriod replaces a line's request period
func (s *Store) UpdateItemPeriod(ctx context.Context, lineID string, period domain.RequestPeriod) error {
	normalized, err := NormalizePeriod(period)
	if err != nil {
		return err
	}
	return s.updateLine(ctx, lineID, func(line *domain.CartLine) error {
		line.Period = normalized
		return nil
	})
}

// UpdateItemPriority sets a line's priority
func (s *Store) UpdateItemPriority(ctx context.Context, lineID string, priority domain.Priority) error {
	if !priority.IsValid() {
		return &errors.ErrInvalidArgument{Field: "priority", Message: "must be one of LOW, NORMAL, HIGH, URGENT"}
	}
	return s.updateLine(ctx, lineID, func(line *domain.CartLine) error {
		line.Priority = priority
		return nil
	})
}

func (s *Store) updateLine(ctx context.Context, lineID string, apply func(*domain.CartLine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idleLocked(); err != nil {
		return err
	}
	line, err := s.lineLocked(lineID)
	if err != nil {
		return err
	}
	if err := apply(line); err != nil {
		return err
	}
	s.persistLocked(ctx)
	return nil
}

// UpdateGlobalPurpose sets the request-level purpose used at submission
func (s *Store) UpdateGlobalPurpose(ctx context.Context, purpose string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Purpose = purpose
	s.persistLocked(ctx)
}

// UpdateGlobalNotes sets the request-level notes used at submission
func (s *Store) UpdateGlobalNotes(ctx context.Context, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Notes = notes
	s.persistLocked(ctx)
}

// ClearCart empties the lines and resets purpose and notes
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	s.persistLocked(ctx)
}

func (s *Store) clearLocked() {
	s.state.Lines = []domain.CartLine{}
	s.state.Purpose = ""
	s.state.Notes = ""
}

// ValidateCart reports whether the cart can be submitted: at least one line and a non-blank purpose
func (s *Store) ValidateCart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.validLocked()
}

func (s *Store) validLocked() bool {
	return len(s.state.Lines) > 0 && strings.TrimSpace(s.state.Purpose) != ""
}

// idleLocked rejects line changes while a submission is in flight; its success clears the cart.
// Removals and clears stay allowed since nothing they touch can be lost.
func (s *Store) idleLocked() error {
	if s.state.Loading {
		return &errors.ErrInvalidState{Reason: "a submission is in progress"}
	}
	return nil
}

// addCapped returns a+b, or limit when the sum would exceed it
func addCapped(a, b, limit int) int {
	if b > limit-a {
		return limit
	}
	return a + b
}

func (s *Store) indexOfProductLocked(productID string) int {
	for i := range s.state.Lines {
		if s.state.Lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfLineLocked(lineID string) int {
	for i := range s.state.Lines {
		if s.state.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

func (s *Store) lineLocked(lineID string) (*domain.CartLine, error) {
	idx := s.indexOfLineLocked(lineID)
	if idx < 0 {
		return nil, &errors.ErrNotFound{Resource: "cart line", ID: lineID}
	}
	return &s.state.Lines[idx], nil
}

// NormalizePeriod rejects missing or inverted dates and derives DurationDays when it is unset
func NormalizePeriod(p domain.RequestPeriod) (domain.RequestPeriod, error) {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return p, &errors.ErrInvalidArgument{Field: "period", Message: "start and end dates are required"}
	}
	if p.EndDate.Before(p.StartDate) {
		return p, &errors.ErrInvalidArgument{Field: "period", Message: "end date is before start date"}
	}
	if p.DurationDays <= 0 {
		p.DurationDays = int(math.Ceil(p.EndDate.Sub(p.StartDate).Hours() / 24))
	}
	return p, nil
}
