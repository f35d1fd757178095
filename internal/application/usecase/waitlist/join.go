package waitlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/internal/domain/waitlist"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

type JoinUseCase struct {
	repo   waitlist.Repository
	logger logger.Logger
}

func NewJoinUseCase(repo waitlist.Repository, log logger.Logger) *JoinUseCase {
	return &JoinUseCase{repo: repo, logger: log}
}

type JoinInput struct {
	Email string
}

type JoinOutput struct {
	Entry *waitlist.Entry
}

func (uc *JoinUseCase) Execute(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.NewInvalidInput("a valid email address is required", nil)
	}

	entry := &waitlist.Entry{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.Add(ctx, entry); err != nil {
		// The repository maps unique violations to a conflict error;
		// the client shows "already on the waitlist".
		return nil, err
	}

	uc.logger.Info("Joined waitlist", zap.String("email", entry.Email))
	return &JoinOutput{Entry: entry}, nil
}
