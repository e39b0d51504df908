package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/pkg/errors"
)

// ProductSource fetches a normalized product
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*domain.CatalogItem, error)
}

type catalogService struct {
	products ProductSource
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products ProductSource, logger *zap.Logger) *catalogService {
	return &catalogService{
		products: products,
		logger:   logger,
	}
}

// ResolveBorrowable fetches the product snapshot a cart line is built from.
// Products whose status does not allow borrowing are rejected with *errors.ErrInvalidState.
func (s *catalogService) ResolveBorrowable(ctx context.Context, productID string) (*domain.CatalogItem, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if !product.Status.IsBorrowable() {
		s.logger.Debug("Product not borrowable",
			zap.String("product_id", productID),
			zap.String("status", string(product.Status)),
		)
		return nil, &errors.ErrInvalidState{
			Reason: fmt.Sprintf("product %s is not available for borrowing (%s)", product.Name, product.Status),
		}
	}

	return product, nil
}
