package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/internal/application/service"
	"github.com/roomnet/roomnet-api/internal/domain/user"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

type VerifyEmailUseCase struct {
	userRepo user.Repository
	tokens   service.VerificationTokens
	logger   logger.Logger
}

func NewVerifyEmailUseCase(repo user.Repository, tokens service.VerificationTokens, log logger.Logger) *VerifyEmailUseCase {
	return &VerifyEmailUseCase{
		userRepo: repo,
		tokens:   tokens,
		logger:   log,
	}
}

type VerifyEmailInput struct {
	Token string
}

func (uc *VerifyEmailUseCase) Execute(ctx context.Context, input VerifyEmailInput) error {
	if input.Token == "" {
		return apperror.NewInvalidInput("verification token is required", nil)
	}

	userID, err := uc.tokens.Lookup(ctx, input.Token)
	if err != nil {
		if errors.Is(err, service.ErrTokenNotFound) {
			// Expired tokens land here too; the client reacts by
			// offering an automatic resend.
			return apperror.NewAppError(apperror.ErrNotAuthenticated,
				"Verification link is invalid or has expired", "token expired or unknown", err)
		}
		return apperror.NewInternal("failed to look up verification token", err)
	}

	if err := uc.userRepo.MarkVerified(ctx, userID); err != nil {
		return err
	}

	if err := uc.tokens.Delete(ctx, input.Token); err != nil {
		uc.logger.Warn("Failed to delete used verification token", zap.Error(err))
	}

	return nil
}
