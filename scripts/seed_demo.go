package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/roomnet/roomnet-api/pkg/auth"
)

// Seeds a verified demo account plus two completed profiles with match
// rows, so the matches page has content during local development.
func main() {
	fmt.Println("seeding demo data...")

	err := godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	DSN := os.Getenv("DB_DSN")
	DEMO_EMAIL := os.Getenv("DEMO_EMAIL")
	DEMO_PASSWORD := os.Getenv("DEMO_PASSWORD")
	if DEMO_EMAIL == "" {
		DEMO_EMAIL = "demo@roomnet.local"
	}
	if DEMO_PASSWORD == "" {
		DEMO_PASSWORD = "demo-password-123"
	}

	hash, err := auth.HashPassword(DEMO_PASSWORD)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), DSN)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	demoID := uuid.New()
	userQuery := `
		INSERT INTO users (id, email, password_hash, email_verified)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET password_hash = $3, email_verified = TRUE
		RETURNING id
	`
	if err := pool.QueryRow(ctx, userQuery, demoID, DEMO_EMAIL, hash).Scan(&demoID); err != nil {
		log.Fatalf("cannot add demo user: %v", err)
	}

	profileQuery := `
		INSERT INTO roommate_profiles (
			user_id, full_name, age, university, year, languages,
			sleep_time, wake_time, cleanliness, visitors, smoking,
			study_habits, music_preference, hobbies, completed_at
		)
		VALUES ($1, $2, $3, 'unh', $4, '["English"]',
			'10pm_to_midnight', '7am_to_9am', 'moderately_clean', 'sometimes', 'no',
			'library', 'headphones', $5, now())
		ON CONFLICT (user_id) DO NOTHING
	`

	type seedMatch struct {
		email    string
		fullName string
		age      string
		year     string
		hobbies  string
		score    float64
	}
	seeds := []seedMatch{
		{"jamie@roomnet.local", "Jamie Park", "20", "sophomore", `["Hiking","Board Games"]`, 0.87},
		{"sam@roomnet.local", "Sam Rivera", "22", "senior", `["Cooking","Running"]`, 0.74},
	}

	for _, sm := range seeds {
		matchID := uuid.New()
		if err := pool.QueryRow(ctx, userQuery, matchID, sm.email, hash).Scan(&matchID); err != nil {
			log.Fatalf("cannot add match user %s: %v", sm.email, err)
		}
		if _, err := pool.Exec(ctx, profileQuery, matchID, sm.fullName, sm.age, sm.year, sm.hobbies); err != nil {
			log.Fatalf("cannot add profile for %s: %v", sm.email, err)
		}
		matchQuery := `
			INSERT INTO matches (user_id, match_user_id, score)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, match_user_id) DO UPDATE SET score = $3
		`
		if _, err := pool.Exec(ctx, matchQuery, demoID, matchID, sm.score); err != nil {
			log.Fatalf("cannot add match row: %v", err)
		}
	}

	fmt.Printf("seeded demo account '%s' with %d matches\n", DEMO_EMAIL, len(seeds))
}
