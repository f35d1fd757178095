package auth

import (
	"context"
	"errors"
	"time"

	"github.com/roomnet/roomnet-api/internal/application/service"
	"github.com/roomnet/roomnet-api/internal/domain/user"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

type ResendVerificationUseCase struct {
	userRepo      user.Repository
	tokens        service.VerificationTokens
	mailer        service.Mailer
	tokenTTL      time.Duration
	verifyURLBase string
	logger        logger.Logger
}

func NewResendVerificationUseCase(
	repo user.Repository,
	tokens service.VerificationTokens,
	mailer service.Mailer,
	tokenTTL time.Duration,
	verifyURLBase string,
	log logger.Logger,
) *ResendVerificationUseCase {
	return &ResendVerificationUseCase{
		userRepo:      repo,
		tokens:        tokens,
		mailer:        mailer,
		tokenTTL:      tokenTTL,
		verifyURLBase: verifyURLBase,
		logger:        log,
	}
}

type ResendVerificationInput struct {
	Email string
}

func (uc *ResendVerificationUseCase) Execute(ctx context.Context, input ResendVerificationInput) error {
	email := normalizeEmail(input.Email)

	u, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NewNotFound("account", email)
		}
		return apperror.NewInternal("failed to look up account", err)
	}

	if u.EmailVerified {
		return apperror.NewInvalidInput("this email is already verified", nil)
	}

	if err := issueVerification(ctx, uc.tokens, uc.mailer, u.ID, email, uc.tokenTTL, uc.verifyURLBase); err != nil {
		return apperror.NewInternal("failed to resend verification mail", err)
	}

	return nil
}
