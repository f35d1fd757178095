package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/internal/domain/profile"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

func (r *postgresProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.RoommateProfile, error) {
	query := `
		SELECT user_id, full_name, age, university, year, country_of_origin,
		       languages, sleep_time, wake_time, cleanliness, visitors, smoking,
		       study_habits, music_preference, hobbies, additional_info,
		       profile_image_url, created_at, completed_at
		FROM roommate_profiles
		WHERE user_id = $1
	`
	p := &profile.RoommateProfile{}
	var languagesBytes, hobbiesBytes []byte

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FullName,
		&p.Age,
		&p.University,
		&p.Year,
		&p.CountryOfOrigin,
		&languagesBytes,
		&p.SleepTime,
		&p.WakeTime,
		&p.Cleanliness,
		&p.Visitors,
		&p.Smoking,
		&p.StudyHabits,
		&p.MusicPreference,
		&hobbiesBytes,
		&p.AdditionalInfo,
		&p.ProfileImageURL,
		&p.CreatedAt,
		&p.CompletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &profile.RoommateProfile{
				UserID:    userID,
				Languages: []string{},
				Hobbies:   []string{},
			}, nil
		}
		return nil, apperror.NewInternal("failed to query roommate profile", err)
	}

	if err := json.Unmarshal(languagesBytes, &p.Languages); err != nil {
		r.logger.Warn("Failed to unmarshal languages", zap.String("user_id", userID.String()), zap.Error(err))
		p.Languages = []string{}
	}
	if err := json.Unmarshal(hobbiesBytes, &p.Hobbies); err != nil {
		r.logger.Warn("Failed to unmarshal hobbies", zap.String("user_id", userID.String()), zap.Error(err))
		p.Hobbies = []string{}
	}

	return p, nil
}

func (r *postgresProfileRepo) Upsert(ctx context.Context, p *profile.RoommateProfile) error {
	languagesBytes, err := json.Marshal(p.Languages)
	if err != nil {
		return apperror.NewInternal("failed to marshal languages", err)
	}
	hobbiesBytes, err := json.Marshal(p.Hobbies)
	if err != nil {
		return apperror.NewInternal("failed to marshal hobbies", err)
	}

	query := `
		INSERT INTO roommate_profiles (
			user_id, full_name, age, university, year, country_of_origin,
			languages, sleep_time, wake_time, cleanliness, visitors, smoking,
			study_habits, music_preference, hobbies, additional_info,
			profile_image_url, created_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			age = EXCLUDED.age,
			university = EXCLUDED.university,
			year = EXCLUDED.year,
			country_of_origin = EXCLUDED.country_of_origin,
			languages = EXCLUDED.languages,
			sleep_time = EXCLUDED.sleep_time,
			wake_time = EXCLUDED.wake_time,
			cleanliness = EXCLUDED.cleanliness,
			visitors = EXCLUDED.visitors,
			smoking = EXCLUDED.smoking,
			study_habits = EXCLUDED.study_habits,
			music_preference = EXCLUDED.music_preference,
			hobbies = EXCLUDED.hobbies,
			additional_info = EXCLUDED.additional_info,
			profile_image_url = EXCLUDED.profile_image_url,
			created_at = EXCLUDED.created_at,
			completed_at = EXCLUDED.completed_at
	`
	_, err = r.db.Exec(ctx, query,
		p.UserID,
		p.FullName,
		p.Age,
		p.University,
		p.Year,
		p.CountryOfOrigin,
		languagesBytes,
		p.SleepTime,
		p.WakeTime,
		p.Cleanliness,
		p.Visitors,
		p.Smoking,
		p.StudyHabits,
		p.MusicPreference,
		hobbiesBytes,
		p.AdditionalInfo,
		p.ProfileImageURL,
		p.CreatedAt,
		p.CompletedAt,
	)

	if err != nil {
		return apperror.NewInternal("failed to upsert roommate profile", err)
	}
	return nil
}
