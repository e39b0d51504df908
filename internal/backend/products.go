package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/uniassets/assetcart/internal/catalog"
	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/pkg/errors"
)

// ProductPage is one page of the product listing
type ProductPage struct {
	Items       []domain.CatalogItem
	Page        int
	HasNextPage bool
}

// GetProduct fetches and normalizes a single product
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.CatalogItem, error) {
	body, err := c.do(ctx, http.MethodGet, "products/"+url.PathEscape(id), nil)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, &errors.ErrNotFound{Resource: "product", ID: id}
		}
		return nil, err
	}

	var rec catalog.ProductRecord
	if err := json.Unmarshal(unwrapData(body), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}
	if rec.ID.String() == "" {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id}
	}

	item := catalog.Normalize(rec)
	return &item, nil
}

// ListProducts fetches one page of products, pages starting at 1
func (c *Client) ListProducts(ctx context.Context, page, perPage int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	body, err := c.do(ctx, http.MethodGet, "products?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	// Paginated responses carry meta; plain arrays are a single page.
	var envelope struct {
		Data []catalog.ProductRecord `json:"data"`
		Meta struct {
			CurrentPage int `json:"current_page"`
			LastPage    int `json:"last_page"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		var plain []catalog.ProductRecord
		if err := json.Unmarshal(body, &plain); err != nil {
			return nil, fmt.Errorf("failed to parse product list response: %w", err)
		}
		return &ProductPage{Items: catalog.NormalizeAll(plain), Page: page}, nil
	}

	return &ProductPage{
		Items:       catalog.NormalizeAll(envelope.Data),
		Page:        page,
		HasNextPage: envelope.Meta.LastPage > page,
	}, nil
}
