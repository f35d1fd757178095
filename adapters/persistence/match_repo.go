package persistence

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/internal/domain/match"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

type postgresMatchRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresMatchRepo(db *pgxpool.Pool, logger logger.Logger) match.Repository {
	return &postgresMatchRepo{db: db, logger: logger}
}

func (r *postgresMatchRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]match.MatchedProfile, error) {
	builder := psql.
		Select(
			"m.match_user_id", "m.score",
			"p.full_name", "p.university", "p.year",
			"p.sleep_time", "p.cleanliness", "p.hobbies", "p.profile_image_url",
		).
		From("matches m").
		Join("roommate_profiles p ON p.user_id = m.match_user_id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("m.score DESC")

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build matches query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list matches", err)
	}
	defer rows.Close()

	matches := make([]match.MatchedProfile, 0)
	for rows.Next() {
		var m match.MatchedProfile
		var hobbiesBytes []byte
		if err := rows.Scan(
			&m.MatchUserID, &m.Score,
			&m.FullName, &m.University, &m.Year,
			&m.SleepTime, &m.Cleanliness, &hobbiesBytes, &m.ProfileImageURL,
		); err != nil {
			return nil, apperror.NewInternal("failed to scan match row", err)
		}
		if err := json.Unmarshal(hobbiesBytes, &m.Hobbies); err != nil {
			r.logger.Warn("Failed to unmarshal match hobbies",
				zap.String("match_user_id", m.MatchUserID.String()), zap.Error(err))
			m.Hobbies = []string{}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating match rows", err)
	}
	return matches, nil
}
