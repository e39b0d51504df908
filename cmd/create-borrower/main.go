package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniassets/assetcart/internal/config"
	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/internal/repository"
	"github.com/uniassets/assetcart/internal/repository/postgres"
)

func main() {
	rotate := flag.String("rotate", "", "ID of an existing borrower whose API key is replaced")
	flag.Usage = func() {
		fmt.Println("Usage: go run cmd/create-borrower/main.go <name> <api-key> [email]")
		fmt.Println("       go run cmd/create-borrower/main.go -rotate <borrower-id> <new-api-key>")
		fmt.Println("Example: go run cmd/create-borrower/main.go \"Physics Lab\" \"physics-lab-key-12345\" lab@example.edu")
	}
	flag.Parse()
	args := flag.Args()

	if (*rotate == "" && len(args) < 2) || (*rotate != "" && len(args) != 1) {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := postgres.Migrate(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)

	var borrower *domain.Borrower
	var apiKey string
	if *rotate != "" {
		apiKey = args[0]
		borrower, err = rotateKey(ctx, repos.Borrower, *rotate, apiKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rotate API key: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("API key rotated, the previous key no longer works\n\n")
	} else {
		apiKey = args[1]
		email := ""
		if len(args) > 2 {
			email = args[2]
		}
		borrower, err = createBorrower(ctx, repos.Borrower, args[0], apiKey, email)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create borrower: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Borrower created\n\n")
	}

	fmt.Printf("Borrower ID: %s\n", borrower.ID.String())
	fmt.Printf("Name: %s\n", borrower.Name)
	if borrower.Email != "" {
		fmt.Printf("Email: %s\n", borrower.Email)
	}
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("\nIMPORTANT: store this API key now, only its hash is kept.\n")
	fmt.Printf("\nUse it in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}

func createBorrower(ctx context.Context, borrowers repository.BorrowerRepository, name, apiKey, email string) (*domain.Borrower, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key must not be empty")
	}

	borrower := &domain.Borrower{
		Name:     name,
		Email:    email,
		IsActive: true,
	}
	if err := borrower.SetAPIKey(apiKey, bcrypt.DefaultCost); err != nil {
		return nil, fmt.Errorf("failed to hash API key: %w", err)
	}

	if err := borrowers.Create(ctx, borrower); err != nil {
		return nil, err
	}
	return borrower, nil
}

// rotateKey replaces the API key of an existing borrower
func rotateKey(ctx context.Context, borrowers repository.BorrowerRepository, borrowerID, apiKey string) (*domain.Borrower, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key must not be empty")
	}

	id, err := uuid.Parse(borrowerID)
	if err != nil {
		return nil, fmt.Errorf("invalid borrower ID %q: %w", borrowerID, err)
	}

	borrower, err := borrowers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := borrower.SetAPIKey(apiKey, bcrypt.DefaultCost); err != nil {
		return nil, fmt.Errorf("failed to hash API key: %w", err)
	}

	if err := borrowers.Update(ctx, borrower); err != nil {
		return nil, err
	}
	return borrower, nil
}
