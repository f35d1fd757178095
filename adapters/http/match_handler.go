package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	matchUC "github.com/roomnet/roomnet-api/internal/application/usecase/match"
	"github.com/roomnet/roomnet-api/pkg/apperror"
)

type MatchHandler struct {
	listMatches *matchUC.ListMatchesUseCase
}

func NewMatchHandler(listMatches *matchUC.ListMatchesUseCase) *MatchHandler {
	return &MatchHandler{listMatches: listMatches}
}

func (h *MatchHandler) List(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewNotAuthenticated("userID not found in context"))
		return
	}

	out, err := h.listMatches.Execute(c.Request.Context(), matchUC.ListMatchesInput{UserID: userID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": ToMatchDTOs(out.Matches)})
}
