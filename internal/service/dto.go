package service

import (
	"encoding/json"
	"time"

	"github.com/uniassets/assetcart/internal/cart"
	"github.com/uniassets/assetcart/internal/domain"
)

// AddItemRequest is the payload for adding a product to the cart
type AddItemRequest struct {
	ProductID json.Number  `json:"product_id" binding:"required"`
	Quantity  int          `json:"quantity" binding:"required,min=1,max=100000"`
	Mode      string       `json:"mode" binding:"omitempty,oneof=add set"`
	Period    *PeriodInput `json:"period,omitempty"`
}

const (
	AddModeAdd = "add"
	AddModeSet = "set"
)

// UpdateLineRequest patches one cart line; nil fields are left unchanged
type UpdateLineRequest struct {
	Quantity *int         `json:"quantity,omitempty" binding:"omitempty,max=100000"`
	Purpose  *string      `json:"purpose,omitempty"`
	Notes    *string      `json:"notes,omitempty"`
	Priority *string      `json:"priority,omitempty"`
	Period   *PeriodInput `json:"period,omitempty"`
}

// RequestInfoRequest sets the request-level purpose and notes
type RequestInfoRequest struct {
	Purpose *string `json:"purpose,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// PeriodInput is a request period as sent by clients
type PeriodInput struct {
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
	DurationDays int       `json:"duration_days" binding:"min=0"`
	Flexible     bool      `json:"is_flexible"`
}

// ToDomain converts the input; validation happens in the cart
func (p *PeriodInput) ToDomain() *domain.RequestPeriod {
	if p == nil {
		return nil
	}
	return &domain.RequestPeriod{
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		DurationDays: p.DurationDays,
		Flexible:     p.Flexible,
	}
}

// CartResponse is the cart as returned to clients
type CartResponse struct {
	Items      []domain.CartLine `json:"items"`
	Purpose    string            `json:"purpose"`
	Notes      string            `json:"notes"`
	TotalItems int               `json:"total_items"`
	Valid      bool              `json:"valid"`
	Loading    bool              `json:"loading"`
	LastError  string            `json:"last_error,omitempty"`
}

// NewCartResponse builds the response from the store's selectors
func NewCartResponse(store *cart.Store) CartResponse {
	state := store.State()
	return CartResponse{
		Items:      state.Lines,
		Purpose:    state.Purpose,
		Notes:      state.Notes,
		TotalItems: store.TotalItems(),
		Valid:      store.ValidateCart(),
		Loading:    state.Loading,
		LastError:  state.LastError,
	}
}
