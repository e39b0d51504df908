// Package redis stores serialized carts in Redis, one key per owner under a namespace.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/config"
	"github.com/uniassets/assetcart/pkg/errors"
)

// CartStateRepository is a Redis-backed cart slot
type CartStateRepository struct {
	client    *goredis.Client
	namespace string
	ttl       time.Duration // zero means no expiry
	logger    *zap.Logger
}

// NewClient parses the URL and checks the connection
func NewClient(cfg config.RedisConfig) (*goredis.Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opt, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := goredis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewCartStateRepository creates a cart slot using an existing client
func NewCartStateRepository(client *goredis.Client, namespace string, ttl time.Duration, logger *zap.Logger) *CartStateRepository {
	return &CartStateRepository{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger,
	}
}

func (r *CartStateRepository) key(ownerID string) string {
	return fmt.Sprintf("%s:cart:%s", r.namespace, ownerID)
}

func (r *CartStateRepository) Get(ctx context.Context, ownerID string) ([]byte, error) {
	state, err := r.client.Get(ctx, r.key(ownerID)).Bytes()
	if err == goredis.Nil {
		return nil, &errors.ErrNotFound{Resource: "cart", ID: ownerID}
	}
	if err != nil {
		r.logger.Error("Failed to get cart state", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return state, nil
}

func (r *CartStateRepository) Save(ctx context.Context, ownerID string, state []byte) error {
	if err := r.client.Set(ctx, r.key(ownerID), state, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save cart state", zap.String("owner_id", ownerID), zap.Error(err))
		return err
	}
	return nil
}

func (r *CartStateRepository) Delete(ctx context.Context, ownerID string) error {
	if err := r.client.Del(ctx, r.key(ownerID)).Err(); err != nil {
		r.logger.Error("Failed to delete cart state", zap.String("owner_id", ownerID), zap.Error(err))
		return err
	}
	return nil
}
