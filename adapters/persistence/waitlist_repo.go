package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomnet/roomnet-api/internal/domain/waitlist"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresWaitlistRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresWaitlistRepo(db *pgxpool.Pool, logger logger.Logger) waitlist.Repository {
	return &postgresWaitlistRepo{db: db, logger: logger}
}

func (r *postgresWaitlistRepo) Add(ctx context.Context, e *waitlist.Entry) error {
	query := `INSERT INTO waitlist (id, email, created_at) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, e.ID, e.Email, e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewConflict("waitlist entry", "email", e.Email)
		}
		return apperror.NewInternal("failed to insert waitlist entry", err)
	}
	return nil
}

func (r *postgresWaitlistRepo) ListRecent(ctx context.Context, limit int) ([]waitlist.Entry, error) {
	builder := psql.
		Select("id", "email", "created_at").
		From("waitlist").
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build waitlist query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list waitlist entries", err)
	}
	defer rows.Close()

	entries := make([]waitlist.Entry, 0)
	for rows.Next() {
		var e waitlist.Entry
		if err := rows.Scan(&e.ID, &e.Email, &e.CreatedAt); err != nil {
			return nil, apperror.NewInternal("failed to scan waitlist entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating waitlist entries", err)
	}
	return entries, nil
}
