package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginAttemptKeyPrefix = "auth:login_attempts:" // auth:login_attempts:{email}

// LoginAttemptRepository counts failed sign-ins per email in Redis. The
// counter expires window after the first failure.
type LoginAttemptRepository struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewLoginAttemptRepository(client *redis.Client, max int, window time.Duration) *LoginAttemptRepository {
	return &LoginAttemptRepository{client: client, max: max, window: window}
}

// Allowed reports whether another sign-in attempt may be made for email.
func (r *LoginAttemptRepository) Allowed(ctx context.Context, email string) (bool, error) {
	n, err := r.client.Get(ctx, r.key(email)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read login attempts: %w", err)
	}
	return n < r.max, nil
}

// RecordFailure increments the failure counter for email.
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, email string) error {
	key := r.key(email)

	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return fmt.Errorf("failed to set login attempt expiry: %w", err)
		}
	}
	return nil
}

// Reset clears the failure counter for email.
func (r *LoginAttemptRepository) Reset(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

func (r *LoginAttemptRepository) key(email string) string {
	return loginAttemptKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}
