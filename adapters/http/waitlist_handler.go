package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	waitlistUC "github.com/roomnet/roomnet-api/internal/application/usecase/waitlist"
	"github.com/roomnet/roomnet-api/pkg/apperror"
)

type WaitlistHandler struct {
	joinUseCase *waitlistUC.JoinUseCase
}

func NewWaitlistHandler(joinUC *waitlistUC.JoinUseCase) *WaitlistHandler {
	return &WaitlistHandler{joinUseCase: joinUC}
}

type joinWaitlistRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *WaitlistHandler) Join(c *gin.Context) {
	var req joinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for waitlist", err))
		return
	}

	output, err := h.joinUseCase.Execute(c.Request.Context(), waitlistUC.JoinInput{Email: req.Email})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"email":   output.Entry.Email,
		"message": "Be the first to experience RoomNet when we launch.",
	})
}
