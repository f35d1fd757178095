package match

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roomnet/roomnet-api/internal/domain/match"
)

type ListMatchesUseCase struct {
	matchRepo match.Repository
}

func NewListMatchesUseCase(repo match.Repository) *ListMatchesUseCase {
	return &ListMatchesUseCase{matchRepo: repo}
}

type ListMatchesInput struct {
	UserID uuid.UUID
}

type ListMatchesOutput struct {
	Matches []match.MatchedProfile
}

func (uc *ListMatchesUseCase) Execute(ctx context.Context, input ListMatchesInput) (*ListMatchesOutput, error) {
	matches, err := uc.matchRepo.ListForUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("list matches failed: %w", err)
	}
	return &ListMatchesOutput{Matches: matches}, nil
}
