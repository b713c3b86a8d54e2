// Package cache holds the Redis-backed password reset token store.
// Tokens live in Redis rather than process memory so they survive
// restarts and work across multiple instances; expiry is native TTL.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/menuqr/hotel-menu-backend/internal/config"
	"github.com/menuqr/hotel-menu-backend/internal/utils"
)

const resetTokenPrefix = "reset:"

// ResetTokenStore issues and redeems single-use password reset tokens
type ResetTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetTokenStore connects to Redis and returns a token store
func NewResetTokenStore(ctx context.Context, cfg config.RedisConfig) (*ResetTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ResetTokenStore{client: client, ttl: cfg.ResetTokenTTL}, nil
}

// NewResetTokenStoreWithClient wraps an existing client, used by tests
func NewResetTokenStoreWithClient(client *redis.Client, ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{client: client, ttl: ttl}
}

// Issue creates a random token bound to the user and stores it with the
// configured TTL
func (s *ResetTokenStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := utils.GenerateSecret(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	key := resetTokenPrefix + token
	if err := s.client.Set(ctx, key, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// Redeem consumes a token and returns the bound user ID. A token can be
// redeemed exactly once; unknown or expired tokens return (nil, nil).
func (s *ResetTokenStore) Redeem(ctx context.Context, token string) (*uuid.UUID, error) {
	key := resetTokenPrefix + token

	val, err := s.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to redeem reset token: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return nil, fmt.Errorf("corrupt reset token value: %w", err)
	}

	return &userID, nil
}

// Close closes the underlying Redis connection
func (s *ResetTokenStore) Close() error {
	return s.client.Close()
}
