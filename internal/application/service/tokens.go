package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrTokenNotFound = errors.New("verification token not found or expired")

// VerificationTokens holds short-lived email verification tokens.
type VerificationTokens interface {
	Store(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	// Lookup returns ErrTokenNotFound for unknown or expired tokens.
	Lookup(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}
