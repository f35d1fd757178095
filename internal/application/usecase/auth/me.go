package auth

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/roomnet/roomnet-api/internal/domain/user"
)

// CurrentUserUseCase resolves the authenticated account behind a JWT
// subject, for the session bootstrap on page load.
type CurrentUserUseCase struct {
	userRepo user.Repository
}

func NewCurrentUserUseCase(repo user.Repository) *CurrentUserUseCase {
	return &CurrentUserUseCase{userRepo: repo}
}

type CurrentUserOutput struct {
	UserID        uuid.UUID
	Email         string
	EmailVerified bool
}

func (uc *CurrentUserUseCase) Execute(ctx context.Context, userID uuid.UUID) (*CurrentUserOutput, error) {
	ctx, span := tracer.Start(ctx, "CurrentUser")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CurrentUserOutput{
		UserID:        u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
	}, nil
}
