package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/uniassets/assetcart/pkg/errors"
)

type cartStateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCartStateRepository creates a cart slot backed by the cart_states table
func NewCartStateRepository(db *sql.DB, logger *zap.Logger) *cartStateRepository {
	return &cartStateRepository{
		db:     db,
		logger: logger,
	}
}

func (r *cartStateRepository) Get(ctx context.Context, ownerID string) ([]byte, error) {
	query := `
		SELECT state
		FROM cart_states
		WHERE owner_id = $1
	`

	var state []byte
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "cart", ID: ownerID}
	}
	if err != nil {
		r.logger.Error("Failed to get cart state", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	return state, nil
}

func (r *cartStateRepository) Save(ctx context.Context, ownerID string, state []byte) error {
	query := `
		INSERT INTO cart_states (owner_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id)
		DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, ownerID, string(state), time.Now())
	if err != nil {
		r.logger.Error("Failed to save cart state", zap.String("owner_id", ownerID), zap.Error(err))
		return err
	}

	return nil
}

func (r *cartStateRepository) Delete(ctx context.Context, ownerID string) error {
	query := `DELETE FROM cart_states WHERE owner_id = $1`

	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		r.logger.Error("Failed to delete cart state", zap.String("owner_id", ownerID), zap.Error(err))
		return err
	}

	return nil
}
