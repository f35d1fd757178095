package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/internal/application/service"
	"github.com/roomnet/roomnet-api/internal/domain/user"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/auth"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

type SignupUseCase struct {
	userRepo      user.Repository
	tokens        service.VerificationTokens
	mailer        service.Mailer
	tokenTTL      time.Duration
	verifyURLBase string
	logger        logger.Logger
}

func NewSignupUseCase(
	repo user.Repository,
	tokens service.VerificationTokens,
	mailer service.Mailer,
	tokenTTL time.Duration,
	verifyURLBase string,
	log logger.Logger,
) *SignupUseCase {
	return &SignupUseCase{
		userRepo:      repo,
		tokens:        tokens,
		mailer:        mailer,
		tokenTTL:      tokenTTL,
		verifyURLBase: verifyURLBase,
		logger:        log,
	}
}

type SignupInput struct {
	Email    string
	Password string
}

type SignupOutput struct {
	UserID uuid.UUID
}

func (uc *SignupUseCase) Execute(ctx context.Context, input SignupInput) (*SignupOutput, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, apperror.NewInvalidInput("email is required", nil)
	}
	if len(input.Password) < auth.MinPasswordLength {
		return nil, apperror.NewInvalidInput(
			fmt.Sprintf("password must be at least %d characters long", auth.MinPasswordLength), nil)
	}

	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NewInternal("failed to check existing account", err)
	}
	if existing != nil {
		// The client offers a resend-verification action on this error.
		return nil, apperror.NewConflict("account", "email", email)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	// Mail failure is not fatal: the resend flow covers it.
	if err := issueVerification(ctx, uc.tokens, uc.mailer, u.ID, email, uc.tokenTTL, uc.verifyURLBase); err != nil {
		uc.logger.Warn("Failed to send verification mail on signup",
			zap.String("email", email), zap.Error(err))
	}

	return &SignupOutput{UserID: u.ID}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func issueVerification(
	ctx context.Context,
	tokens service.VerificationTokens,
	mailer service.Mailer,
	userID uuid.UUID,
	email string,
	ttl time.Duration,
	urlBase string,
) error {
	token := uuid.NewString()
	if err := tokens.Store(ctx, token, userID, ttl); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	verifyURL := fmt.Sprintf("%s?token=%s", urlBase, token)
	if err := mailer.SendVerificationMail(ctx, email, verifyURL); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}
	return nil
}
