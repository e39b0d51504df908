package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/config"
	"github.com/uniassets/assetcart/internal/repository"
)

// Schema creates the tables this service owns. Requests themselves live in the asset backend;
// borrower_requests only records who created which one.
const Schema = `
CREATE TABLE IF NOT EXISTS borrowers (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	email          TEXT,
	api_key_hash   TEXT NOT NULL,
	api_key_lookup TEXT NOT NULL UNIQUE,
	is_active      BOOLEAN NOT NULL DEFAULT true,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS borrower_requests (
	borrower_id    UUID NOT NULL REFERENCES borrowers(id),
	request_id     BIGINT NOT NULL,
	request_number TEXT NOT NULL,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (borrower_id, request_id)
);

CREATE TABLE IF NOT EXISTS cart_states (
	owner_id   TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// NewConnection opens and pings a postgres database
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate applies Schema
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// NewRepositories creates postgres-backed repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		CartState: NewCartStateRepository(db, logger),
		Borrower:  NewBorrowerRepository(db, logger),
		Request:   NewBorrowerRequestRepository(db, logger),
	}
}
