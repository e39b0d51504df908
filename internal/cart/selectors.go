package cart

import "github.com/uniassets/assetcart/internal/domain"

// TotalItems is the sum of quantities across all lines
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.state.Lines {
		total += line.Quantity
	}
	return total
}

// ItemQuantity returns the quantity in the cart for productID, 0 when absent
func (s *Store) ItemQuantity(productID string) int {
	line, ok := s.CartItem(productID)
	if !ok {
		return 0
	}
	return line.Quantity
}

// CartItem returns a copy of the line for productID
func (s *Store) CartItem(productID string) (domain.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfProductLocked(productID)
	if idx < 0 {
		return domain.CartLine{}, false
	}
	return s.state.Lines[idx], true
}

// IsInCart reports whether productID has a line
func (s *Store) IsInCart(productID string) bool {
	_, ok := s.CartItem(productID)
	return ok
}

// Lines returns a copy of the lines in display order
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.CartLine{}, s.state.Lines...)
}

// State returns a copy of the whole cart, including the transient loading flag and last error
func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	state.Lines = append([]domain.CartLine{}, s.state.Lines...)
	return state
}

// Loading reports whether a submission is in flight
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Loading
}

// LastError returns the message of the last failed submission, empty after a success or a new attempt
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.LastError
}
