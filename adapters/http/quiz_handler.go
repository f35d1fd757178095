package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	quizUC "github.com/roomnet/roomnet-api/internal/application/usecase/quiz"
	"github.com/roomnet/roomnet-api/internal/domain/quiz"
	"github.com/roomnet/roomnet-api/pkg/apperror"
)

// 5 MB, matching the client-side limit on the upload control.
const maxImageBytes = 5 << 20

type QuizHandler struct {
	wizard *quizUC.WizardUseCase
}

func NewQuizHandler(wizard *quizUC.WizardUseCase) *QuizHandler {
	return &QuizHandler{wizard: wizard}
}

func (h *QuizHandler) GetDraft(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewNotAuthenticated("userID not found in context"))
		return
	}

	d, err := h.wizard.Get(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToDraftDTO(d))
}

type editDraftRequest struct {
	Op    string `json:"op" binding:"required"`
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

func (h *QuizHandler) EditDraft(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewNotAuthenticated("userID not found in context"))
		return
	}

	var req editDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for draft edit", err))
		return
	}

	var (
		d   *quiz.Draft
		err error
	)
	switch req.Op {
	case "set":
		d, err = h.wizard.EditField(c.Request.Context(), userID, req.Field, req.Value)
	case "add":
		d, err = h.wizard.AddItem(c.Request.Context(), userID, req.Field, req.Value)
	case "remove":
		d, err = h.wizard.RemoveItem(c.Request.Context(), userID, req.Field, req.Value)
	default:
		err = apperror.NewInvalidInput("op must be one of set, add, remove", nil)
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToDraftDTO(d))
}

func (h *QuizHandler) Next(c *gin.Context) {
	h.step(c, true)
}

func (h *QuizHandler) Previous(c *gin.Context) {
	h.step(c, false)
}

func (h *QuizHandler) step(c *gin.Context, forward bool) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewNotAuthenticated("userID not found in context"))
		return
	}

	var (
		d   *quiz.Draft
		err error
	)
	if forward {
		d, err = h.wizard.GoNext(c.Request.Context(), userID)
	} else {
		d, err = h.wizard.GoPrevious(c.Request.Context(), userID)
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToDraftDTO(d))
}

func (h *QuizHandler) AttachImage(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewNotAuthenticated("userID not found in context"))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.Error(apperror.NewInvalidInput("an 'image' file field is required", err))
		return
	}
	if fileHeader.Size > maxImageBytes {
		c.Error(apperror.NewInvalidInput("image exceeds the 5 MB limit", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open uploaded image", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		c.Error(apperror.NewInternal("failed to read uploaded image", err))
		return
	}

	d, err := h.wizard.AttachImage(c.Request.Context(), userID,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToDraftDTO(d))
}

func (h *QuizHandler) Submit(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewNotAuthenticated("userID not found in context"))
		return
	}

	output, err := h.wizard.Submit(c.Request.Context(), quizUC.SubmitInput{UserID: userID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(output.Profile))
}

func (h *QuizHandler) CompletionStatus(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewNotAuthenticated("userID not found in context"))
		return
	}

	completed, err := h.wizard.CompletionStatus(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": completed})
}

// Options serves the fixed option lists so the client renders the same
// choices the server validates against.
func (h *QuizHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"age":             quiz.AgeOptions,
		"universities":    quiz.UniversityOptions,
		"year":            quiz.YearOptions,
		"sleepTime":       quiz.SleepTimeOptions,
		"wakeTime":        quiz.WakeTimeOptions,
		"cleanliness":     quiz.CleanlinessOptions,
		"visitors":        quiz.VisitorsOptions,
		"smoking":         quiz.SmokingOptions,
		"studyHabits":     quiz.StudyHabitsOptions,
		"musicPreference": quiz.MusicPreferenceOptions,
	})
}
