package waitlist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	// Add inserts a new entry; a duplicate email yields a conflict error.
	Add(ctx context.Context, e *Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
