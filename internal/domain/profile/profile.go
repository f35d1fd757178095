package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RoommateProfile is the durable record built from a completed quiz.
// One row per user; a resubmission replaces the prior row.
type RoommateProfile struct {
	UserID          uuid.UUID  `json:"user_id"`
	FullName        string     `json:"full_name"`
	Age             string     `json:"age"`
	University      string     `json:"university"`
	Year            string     `json:"year"`
	CountryOfOrigin string     `json:"country_of_origin"`
	Languages       []string   `json:"languages"`
	SleepTime       string     `json:"sleep_time"`
	WakeTime        string     `json:"wake_time"`
	Cleanliness     string     `json:"cleanliness"`
	Visitors        string     `json:"visitors"`
	Smoking         string     `json:"smoking"`
	StudyHabits     string     `json:"study_habits"`
	MusicPreference string     `json:"music_preference"`
	Hobbies         []string   `json:"hobbies"`
	AdditionalInfo  string     `json:"additional_info"`
	ProfileImageURL *string    `json:"profile_image_url"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// Completed reports whether the user has finished the quiz. Routing
// uses this to decide between the quiz and the matches page.
func (p *RoommateProfile) Completed() bool {
	return p != nil && p.CompletedAt != nil
}

type Repository interface {
	// GetByUserID returns the stored profile, or a zero profile with
	// only UserID set when the user has not submitted yet.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*RoommateProfile, error)
	// Upsert inserts or replaces the row keyed by user_id.
	Upsert(ctx context.Context, p *RoommateProfile) error
}
