package match

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Match links two users with a compatibility score. Rows are written by
// the downstream matching pipeline; this service only reads them.
type Match struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	MatchUserID uuid.UUID `json:"match_user_id"`
	Score       float64   `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
}

// MatchedProfile is a match joined with the matched user's profile, as
// shown on the matches page.
type MatchedProfile struct {
	MatchUserID     uuid.UUID `json:"match_user_id"`
	Score           float64   `json:"score"`
	FullName        string    `json:"full_name"`
	University      string    `json:"university"`
	Year            string    `json:"year"`
	SleepTime       string    `json:"sleep_time"`
	Cleanliness     string    `json:"cleanliness"`
	Hobbies         []string  `json:"hobbies"`
	ProfileImageURL *string   `json:"profile_image_url"`
}

type Repository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]MatchedProfile, error)
}
