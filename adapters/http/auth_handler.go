package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authUC "github.com/roomnet/roomnet-api/internal/application/usecase/auth"
	"github.com/roomnet/roomnet-api/pkg/apperror"
)

type AuthHandler struct {
	signupUseCase      *authUC.SignupUseCase
	loginUseCase       *authUC.LoginUseCase
	verifyUseCase      *authUC.VerifyEmailUseCase
	resendUseCase      *authUC.ResendVerificationUseCase
	currentUserUseCase *authUC.CurrentUserUseCase
}

func NewAuthHandler(
	signupUC *authUC.SignupUseCase,
	loginUC *authUC.LoginUseCase,
	verifyUC *authUC.VerifyEmailUseCase,
	resendUC *authUC.ResendVerificationUseCase,
	currentUserUC *authUC.CurrentUserUseCase,
) *AuthHandler {
	return &AuthHandler{
		signupUseCase:      signupUC,
		loginUseCase:       loginUC,
		verifyUseCase:      verifyUC,
		resendUseCase:      resendUC,
		currentUserUseCase: currentUserUC,
	}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for signup", err))
		return
	}

	output, err := h.signupUseCase.Execute(c.Request.Context(), authUC.SignupInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id": output.UserID,
		"message": "Please check your email for the verification link.",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for login", err))
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), authUC.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": output.AccessToken,
	})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")

	err := h.verifyUseCase.Execute(c.Request.Context(), authUC.VerifyEmailInput{Token: token})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified, you can log in now."})
}

type resendRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for resend", err))
		return
	}

	err := h.resendUseCase.Execute(c.Request.Context(), authUC.ResendVerificationInput{Email: req.Email})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "New verification link sent! Please check your email."})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewNotAuthenticated("userID not found in context"))
		return
	}

	out, err := h.currentUserUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":        out.UserID,
		"email":          out.Email,
		"email_verified": out.EmailVerified,
	})
}
