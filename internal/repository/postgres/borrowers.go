package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/pkg/errors"
)

type borrowerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBorrowerRepository creates a new borrower repository
func NewBorrowerRepository(db *sql.DB, logger *zap.Logger) *borrowerRepository {
	return &borrowerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *borrowerRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Borrower, error) {
	query := `
		SELECT id, name, email, api_key_hash, api_key_lookup, is_active, created_at, updated_at
		FROM borrowers
		WHERE api_key_lookup = $1 AND is_active = true
	`

	borrower, err := scanBorrower(r.db.QueryRowContext(ctx, query, domain.APIKeyLookup(apiKey)))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
	}
	if err != nil {
		r.logger.Error("Failed to get borrower by API key", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(borrower.APIKeyHash), []byte(apiKey)); err != nil {
		return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
	}
	return borrower, nil
}

func (r *borrowerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Borrower, error) {
	query := `
		SELECT id, name, email, api_key_hash, api_key_lookup, is_active, created_at, updated_at
		FROM borrowers
		WHERE id = $1
	`

	borrower, err := scanBorrower(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "borrower", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get borrower by ID", zap.Error(err))
		return nil, err
	}
	return borrower, nil
}

func (r *borrowerRepository) Create(ctx context.Context, borrower *domain.Borrower) error {
	query := `
		INSERT INTO borrowers (id, name, email, api_key_hash, api_key_lookup, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	if borrower.ID == uuid.Nil {
		borrower.ID = uuid.New()
	}
	if borrower.CreatedAt.IsZero() {
		borrower.CreatedAt = now
	}
	if borrower.UpdatedAt.IsZero() {
		borrower.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		borrower.ID,
		borrower.Name,
		nullString(borrower.Email),
		borrower.APIKeyHash,
		borrower.APIKeyLookup,
		borrower.IsActive,
		borrower.CreatedAt,
		borrower.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create borrower", zap.Error(err))
		return err
	}

	return nil
}

func (r *borrowerRepository) Update(ctx context.Context, borrower *domain.Borrower) error {
	query := `
		UPDATE borrowers
		SET name = $2, email = $3, api_key_hash = $4, api_key_lookup = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`

	borrower.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, query,
		borrower.ID,
		borrower.Name,
		nullString(borrower.Email),
		borrower.APIKeyHash,
		borrower.APIKeyLookup,
		borrower.IsActive,
		borrower.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update borrower", zap.Error(err))
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &errors.ErrNotFound{Resource: "borrower", ID: borrower.ID.String()}
	}

	return nil
}

func scanBorrower(row *sql.Row) (*domain.Borrower, error) {
	var borrower domain.Borrower
	var email sql.NullString

	err := row.Scan(
		&borrower.ID,
		&borrower.Name,
		&email,
		&borrower.APIKeyHash,
		&borrower.APIKeyLookup,
		&borrower.IsActive,
		&borrower.CreatedAt,
		&borrower.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	borrower.Email = email.String
	return &borrower, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
