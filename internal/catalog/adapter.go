package catalog

import (
	"encoding/json"
	"strings"

	"github.com/uniassets/assetcart/internal/domain"
)

// DefaultUnit is used when the backend omits a unit label
const DefaultUnit = "unit"

// ProductRecord is the product shape returned by the asset backend.
// Older endpoints report stock under different field names, so all of them are accepted.
type ProductRecord struct {
	ID                json.Number     `json:"id"`
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	CategoryID        json.Number     `json:"category_id,omitempty"`
	Category          *CategoryRecord `json:"category,omitempty"`
	Stock             *int            `json:"stock,omitempty"`
	AvailableQuantity *int            `json:"available_quantity,omitempty"`
	Quantity          *int            `json:"quantity,omitempty"`
	Unit              string          `json:"unit,omitempty"`
	Status            string          `json:"status,omitempty"`
	ImageURL          *string         `json:"image_url,omitempty"`
}

// CategoryRecord is the nested category object some endpoints embed
type CategoryRecord struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// Normalize converts a backend product record into a CatalogItem
func Normalize(rec ProductRecord) domain.CatalogItem {
	item := domain.CatalogItem{
		ID:       rec.ID.String(),
		Name:     strings.TrimSpace(rec.Name),
		Code:     strings.TrimSpace(rec.Code),
		Stock:    stockOf(rec),
		Unit:     rec.Unit,
		Status:   normalizeStatus(rec.Status),
		ImageURL: rec.ImageURL,
	}

	if item.Unit == "" {
		item.Unit = DefaultUnit
	}

	if rec.Category != nil {
		item.CategoryID = rec.Category.ID.String()
		item.CategoryName = rec.Category.Name
	}
	if item.CategoryID == "" {
		item.CategoryID = rec.CategoryID.String()
	}

	return item
}

// NormalizeAll converts a page of backend records
func NormalizeAll(recs []ProductRecord) []domain.CatalogItem {
	items := make([]domain.CatalogItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, Normalize(rec))
	}
	return items
}

func stockOf(rec ProductRecord) int {
	var stock int
	switch {
	case rec.Stock != nil:
		stock = *rec.Stock
	case rec.AvailableQuantity != nil:
		stock = *rec.AvailableQuantity
	case rec.Quantity != nil:
		stock = *rec.Quantity
	}
	if stock < 0 {
		return 0
	}
	return stock
}

func normalizeStatus(raw string) domain.ProductStatus {
	status := domain.ProductStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return domain.ProductStatusActive
	}
	return status
}
