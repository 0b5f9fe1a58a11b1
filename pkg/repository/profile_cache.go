package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProfileCache caches user profile lookups. A profile is read once per
// inbound message, so a short TTL keeps the store off the hot path without
// letting revoked tokens linger.
type ProfileCache interface {
	// SetUserProfile stores a profile in Redis with TTL
	SetUserProfile(ctx context.Context, profile *UserProfile, ttl time.Duration) error

	// GetUserProfile retrieves a cached profile.
	// Returns nil if not cached or expired
	GetUserProfile(ctx context.Context, chatID string) (*UserProfile, error)

	// DeleteUserProfile removes a cached profile.
	// Used when a registration replaces the stored tokens
	DeleteUserProfile(ctx context.Context, chatID string) error
}

// profileCacheRepository implements ProfileCache using Redis
type profileCacheRepository struct {
	redisClient *redis.Client
}

// NewProfileCacheRepository creates a new profile cache repository
func NewProfileCacheRepository(redisClient *redis.Client) ProfileCache {
	return &profileCacheRepository{
		redisClient: redisClient,
	}
}

// ProfileCacheKey builds the Redis key for one chat's profile.
func ProfileCacheKey(chatID string) string {
	return fmt.Sprintf("relay:user-profile:chat:%s", chatID)
}

// SetUserProfile stores a profile in Redis with TTL
func (r *profileCacheRepository) SetUserProfile(ctx context.Context, profile *UserProfile, ttl time.Duration) error {
	if profile == nil {
		return fmt.Errorf("profile cannot be nil")
	}

	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal user profile: %w", err)
	}

	if err := r.redisClient.Set(ctx, ProfileCacheKey(profile.ChatID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store user profile in Redis: %w", err)
	}

	return nil
}

// GetUserProfile retrieves a cached profile
func (r *profileCacheRepository) GetUserProfile(ctx context.Context, chatID string) (*UserProfile, error) {
	data, err := r.redisClient.Get(ctx, ProfileCacheKey(chatID)).Result()
	if err == redis.Nil {
		// Not cached or expired (Redis automatically removed it)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile from Redis: %w", err)
	}

	var profile UserProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user profile: %w", err)
	}

	return &profile, nil
}

// DeleteUserProfile removes a cached profile
func (r *profileCacheRepository) DeleteUserProfile(ctx context.Context, chatID string) error {
	if err := r.redisClient.Del(ctx, ProfileCacheKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete user profile from Redis: %w", err)
	}
	return nil
}
