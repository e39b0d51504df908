package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/backend"
	"github.com/uniassets/assetcart/internal/config"
	"github.com/uniassets/assetcart/internal/domain"
)

const perPage = 50

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-product/main.go <product-code>")
		fmt.Println("Example: go run cmd/find-product/main.go \"MIC-0042\"")
		os.Exit(1)
	}

	targetCode := strings.TrimSpace(os.Args[1])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := backend.NewClient(cfg.Backend, logger)

	fmt.Printf("Searching for product code: %s\n\n", targetCode)

	product, checked, err := findByCode(context.Background(), client, targetCode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list products: %v\n", err)
		os.Exit(1)
	}

	if product == nil {
		fmt.Printf("Product code '%s' not found (checked %d products).\n", targetCode, checked)
		fmt.Printf("\nCodes are matched case-insensitively; make sure the product is published in the catalog.\n")
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(product, "", "  ")
	fmt.Printf("Found product:\n\n%s\n", out)
	fmt.Printf("\nBorrowable: %t\n", product.Status.IsBorrowable())
	fmt.Printf("\nAdd it to a cart with:\n")
	fmt.Printf("curl -X POST -H 'Authorization: Bearer <api-key>' -d '{\"product_id\": %s, \"quantity\": 1}' http://localhost:%s/v1/cart/items\n",
		product.ID, cfg.Port)
}

// findByCode pages through the catalog until the code matches or pages run out
func findByCode(ctx context.Context, client *backend.Client, code string) (*domain.CatalogItem, int, error) {
	checked := 0
	for page := 1; ; page++ {
		result, err := client.ListProducts(ctx, page, perPage)
		if err != nil {
			return nil, checked, err
		}

		for i := range result.Items {
			if strings.EqualFold(result.Items[i].Code, code) {
				return &result.Items[i], checked + i + 1, nil
			}
		}
		checked += len(result.Items)

		if !result.HasNextPage || len(result.Items) == 0 {
			return nil, checked, nil
		}
		fmt.Printf("Searching... (checked %d products so far)\n", checked)
	}
}
