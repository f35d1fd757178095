package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/roomnet/roomnet-api/internal/application/service"
	"github.com/roomnet/roomnet-api/pkg/apperror"
)

// redisTokenStore keeps email verification tokens with a TTL, so an
// expired link simply disappears from the store.
type redisTokenStore struct {
	rdb *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) service.VerificationTokens {
	return &redisTokenStore{rdb: rdb}
}

func tokenKey(token string) string { return fmt.Sprintf("verify:%s", token) }

func (s *redisTokenStore) Store(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, tokenKey(token), userID.String(), ttl).Err(); err != nil {
		return apperror.NewInternal("failed to store verification token", err)
	}
	return nil
}

func (s *redisTokenStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := s.rdb.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		return uuid.Nil, service.ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, apperror.NewInternal("failed to read verification token", err)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.NewInternal("corrupt verification token value", err)
	}
	return userID, nil
}

func (s *redisTokenStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, tokenKey(token)).Err(); err != nil {
		return apperror.NewInternal("failed to delete verification token", err)
	}
	return nil
}
