package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Borrower represents an authenticated user of the cart API
type Borrower struct {
	ID           uuid.UUID
	Name         string
	Email        string
	APIKeyHash   string
	APIKeyLookup string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SetAPIKey stores the bcrypt hash and lookup digest of apiKey.
// The unsalted lookup digest only selects the row; the key is still verified against the bcrypt hash.
func (b *Borrower) SetAPIKey(apiKey string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), cost)
	if err != nil {
		return err
	}
	b.APIKeyHash = string(hash)
	b.APIKeyLookup = APIKeyLookup(apiKey)
	return nil
}

// APIKeyLookup returns the hex SHA-256 digest of apiKey
func APIKeyLookup(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// BorrowerRequest records that a borrower created a backend request, with the last status seen for it
type BorrowerRequest struct {
	BorrowerID    uuid.UUID
	RequestID     int64
	RequestNumber string
	Status        RequestStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CatalogItem is a normalized product record from the asset backend
type CatalogItem struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Code         string        `json:"code"`
	CategoryID   string        `json:"category_id,omitempty"`
	CategoryName string        `json:"category_name,omitempty"`
	Stock        int           `json:"stock"`
	Unit         string        `json:"unit"`
	Status       ProductStatus `json:"status"`
	ImageURL     *string       `json:"image_url,omitempty"`
}

// RequestPeriod is the borrowing window for a cart line
type RequestPeriod struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	DurationDays int       `json:"duration_days"`
	Flexible     bool      `json:"is_flexible"`
}

// NewRequestPeriod builds a period starting at start and lasting days
func NewRequestPeriod(start time.Time, days int) RequestPeriod {
	return RequestPeriod{
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, days),
		DurationDays: days,
	}
}

// CartLine is one product selected for a pending request.
// Product is a snapshot taken when the line was added, not a live reference.
type CartLine struct {
	ID       string        `json:"id"`
	Product  CatalogItem   `json:"product"`
	Quantity int           `json:"quantity"`
	Purpose  string        `json:"purpose,omitempty"`
	Notes    string        `json:"notes,omitempty"`
	Period   RequestPeriod `json:"period"`
	Priority Priority      `json:"priority"`
	AddedAt  time.Time     `json:"added_at"`
}

// CartState is the aggregate cart for one borrower
type CartState struct {
	Lines     []CartLine `json:"items"`
	Purpose   string     `json:"purpose"`
	Notes     string     `json:"notes"`
	Loading   bool       `json:"-"`
	LastError string     `json:"-"`
}

// SubmittedRequest is the backend record created from a submitted cart
type SubmittedRequest struct {
	ID            int64                  `json:"id"`
	RequestNumber string                 `json:"request_number"`
	Status        RequestStatus          `json:"status"`
	Purpose       string                 `json:"purpose,omitempty"`
	Items         []SubmittedRequestItem `json:"items,omitempty"`
	CreatedAt     *time.Time             `json:"created_at,omitempty"`
}

// SubmittedRequestItem is one echoed line of a submitted request
type SubmittedRequestItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
