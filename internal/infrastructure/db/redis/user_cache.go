package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clipstream/accounts-api/internal/core/domain"
)

// cachedUser is the storage shape for cached users. The domain type hides
// its secret fields from JSON, so they are carried explicitly here: the
// middleware needs the full record back.
type cachedUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	AvatarURL     string `json:"avatar"`
	CoverImageURL string `json:"cover_image"`
	PasswordHash  string `json:"password_hash"`
	RefreshToken  string `json:"refresh_token"`
}

// UserCache caches authenticated users in Redis so the auth middleware does
// not hit MongoDB on every request. Key format: user:<id>.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache wraps the given Redis client. Entries expire after ttl, which
// should not exceed the access-token lifetime.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{client: client, ttl: ttl}
}

// Get returns the cached user, or (nil, nil) on a miss.
func (c *UserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("user cache get: %w", err)
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		return nil, fmt.Errorf("user cache decode: %w", err)
	}
	return &domain.User{
		ID:            cu.ID,
		Username:      cu.Username,
		Email:         cu.Email,
		FullName:      cu.FullName,
		AvatarURL:     cu.AvatarURL,
		CoverImageURL: cu.CoverImageURL,
		PasswordHash:  cu.PasswordHash,
		RefreshToken:  cu.RefreshToken,
	}, nil
}

func (c *UserCache) Set(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(cachedUser{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FullName:      user.FullName,
		AvatarURL:     user.AvatarURL,
		CoverImageURL: user.CoverImageURL,
		PasswordHash:  user.PasswordHash,
		RefreshToken:  user.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("user cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(user.ID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry. Called after any mutation of the record.
func (c *UserCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *UserCache) key(id string) string {
	return "user:" + id
}
