package quiz

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/internal/application/service"
	"github.com/roomnet/roomnet-api/internal/domain/profile"
	"github.com/roomnet/roomnet-api/internal/domain/quiz"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

var tracer = otel.Tracer("quiz_usecase")

// SurveyEventPublisher emits a change notification after a profile
// upsert, carrying the old and new row snapshots.
type SurveyEventPublisher interface {
	PublishSurveyEvent(ctx context.Context, oldRecord, newRecord *profile.RoommateProfile) error
}

// WizardUseCase drives the three-step onboarding quiz. Every mutation
// is written through to the draft store so a reload resumes mid-quiz;
// the draft is erased only after a fully successful submission.
type WizardUseCase struct {
	drafts      quiz.DraftStore
	profileRepo profile.Repository
	uploader    service.Uploader
	events      SurveyEventPublisher
	logger      logger.Logger

	mu         sync.Mutex
	selections map[uuid.UUID]uint64
	inFlight   map[uuid.UUID]bool

	// previewMu serializes the staleness check with the preview write
	// so a superseded encode cannot land after a newer one.
	previewMu sync.Mutex
}

func NewWizardUseCase(
	drafts quiz.DraftStore,
	profileRepo profile.Repository,
	uploader service.Uploader,
	events SurveyEventPublisher,
	log logger.Logger,
) *WizardUseCase {
	return &WizardUseCase{
		drafts:      drafts,
		profileRepo: profileRepo,
		uploader:    uploader,
		events:      events,
		logger:      log,
		selections:  make(map[uuid.UUID]uint64),
		inFlight:    make(map[uuid.UUID]bool),
	}
}

// Get resumes the draft for a user, falling back to a fresh step-1
// draft when none is stored or the stored one fails validation.
func (uc *WizardUseCase) Get(ctx context.Context, userID uuid.UUID) (*quiz.Draft, error) {
	d, err := uc.drafts.Load(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal("failed to load quiz draft", err)
	}
	if d == nil {
		return quiz.NewDraft(), nil
	}
	return d, nil
}

func (uc *WizardUseCase) EditField(ctx context.Context, userID uuid.UUID, field, value string) (*quiz.Draft, error) {
	d, err := uc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := d.Answers.Set(field, value); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	return uc.persist(ctx, userID, d)
}

func (uc *WizardUseCase) AddItem(ctx context.Context, userID uuid.UUID, field, item string) (*quiz.Draft, error) {
	d, err := uc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := d.Answers.Add(field, item); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	return uc.persist(ctx, userID, d)
}

func (uc *WizardUseCase) RemoveItem(ctx context.Context, userID uuid.UUID, field, item string) (*quiz.Draft, error) {
	d, err := uc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := d.Answers.Remove(field, item); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	return uc.persist(ctx, userID, d)
}

func (uc *WizardUseCase) GoNext(ctx context.Context, userID uuid.UUID) (*quiz.Draft, error) {
	d, err := uc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.Next()
	return uc.persist(ctx, userID, d)
}

func (uc *WizardUseCase) GoPrevious(ctx context.Context, userID uuid.UUID) (*quiz.Draft, error) {
	d, err := uc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.Previous()
	return uc.persist(ctx, userID, d)
}

// AttachImage stages the selected image and kicks off the preview
// encode in the background. A later selection supersedes a pending
// encode: only the encode matching the latest selection counter may
// write the preview.
func (uc *WizardUseCase) AttachImage(ctx context.Context, userID uuid.UUID, fileName, contentType string, data []byte) (*quiz.Draft, error) {
	if len(data) == 0 {
		return nil, apperror.NewInvalidInput("empty image upload", nil)
	}

	d, err := uc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	img := &quiz.StagedImage{
		Ref:         fmt.Sprintf("quiz:%s:image", userID),
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	}
	if err := uc.drafts.SaveImage(ctx, userID, img); err != nil {
		return nil, apperror.NewInternal("failed to stage profile image", err)
	}

	d.Answers.ProfileImageRef = img.Ref
	d, err = uc.persist(ctx, userID, d)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	uc.selections[userID]++
	selection := uc.selections[userID]
	uc.mu.Unlock()

	go uc.encodePreview(userID, selection, contentType, data)

	return d, nil
}

func (uc *WizardUseCase) encodePreview(userID uuid.UUID, selection uint64, contentType string, data []byte) {
	dataURI := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)

	uc.previewMu.Lock()
	defer uc.previewMu.Unlock()

	uc.mu.Lock()
	stale := uc.selections[userID] != selection
	uc.mu.Unlock()
	if stale {
		return
	}

	if err := uc.drafts.SavePreview(context.Background(), userID, dataURI); err != nil {
		uc.logger.Warn("Failed to persist image preview", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

type SubmitInput struct {
	UserID uuid.UUID
}

type SubmitOutput struct {
	Profile *profile.RoommateProfile
}

// Submit runs the final submission pipeline: identity, optional image
// upload, profile upsert, draft erase, change event. Any failure
// aborts with the draft intact so the user can retry from step 3.
func (uc *WizardUseCase) Submit(ctx context.Context, input SubmitInput) (*SubmitOutput, error) {
	ctx, span := tracer.Start(ctx, "SubmitQuiz")
	defer span.End()

	if input.UserID == uuid.Nil {
		return nil, apperror.NewNotAuthenticated("no session at submission time")
	}
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	if !uc.beginSubmit(input.UserID) {
		return nil, apperror.NewConflict("submission", "user_id", input.UserID.String())
	}
	defer uc.endSubmit(input.UserID)

	d, err := uc.drafts.Load(ctx, input.UserID)
	if err != nil {
		return nil, apperror.NewInternal("failed to load quiz draft", err)
	}
	if d == nil {
		return nil, apperror.NewInvalidInput("no quiz draft to submit", nil)
	}
	if d.Step != quiz.FinalStep {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("cannot submit from step %d", d.Step), nil)
	}

	imageURL, uploadedPublicID, err := uc.uploadStagedImage(ctx, input.UserID, d)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	oldProfile, err := uc.profileRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		uc.logger.Warn("Failed to read prior profile, event will carry an empty old snapshot",
			zap.String("user_id", input.UserID.String()), zap.Error(err))
		oldProfile = &profile.RoommateProfile{UserID: input.UserID}
	}

	now := time.Now().UTC()
	newProfile := buildProfile(input.UserID, &d.Answers, imageURL, now)

	if err := uc.profileRepo.Upsert(ctx, newProfile); err != nil {
		if uploadedPublicID != "" {
			go uc.uploader.Delete(context.Background(), uploadedPublicID)
		}
		span.RecordError(err)
		return nil, apperror.NewPersistFailed("failed to upsert roommate profile", err)
	}

	if err := uc.drafts.Clear(ctx, input.UserID); err != nil {
		uc.logger.Warn("Failed to clear quiz draft after submission",
			zap.String("user_id", input.UserID.String()), zap.Error(err))
	}

	go func() {
		if err := uc.events.PublishSurveyEvent(context.Background(), oldProfile, newProfile); err != nil {
			uc.logger.Error("Failed to publish survey change event", err,
				zap.String("user_id", input.UserID.String()))
		}
	}()

	return &SubmitOutput{Profile: newProfile}, nil
}

// CompletionStatus reports whether the user already submitted, used by
// the routing shell to skip the quiz.
func (uc *WizardUseCase) CompletionStatus(ctx context.Context, userID uuid.UUID) (bool, error) {
	p, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, apperror.NewInternal("failed to read profile", err)
	}
	return p.Completed(), nil
}

func (uc *WizardUseCase) persist(ctx context.Context, userID uuid.UUID, d *quiz.Draft) (*quiz.Draft, error) {
	if err := uc.drafts.Save(ctx, userID, d); err != nil {
		return nil, apperror.NewInternal("failed to persist quiz draft", err)
	}
	return d, nil
}

func (uc *WizardUseCase) beginSubmit(userID uuid.UUID) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.inFlight[userID] {
		return false
	}
	uc.inFlight[userID] = true
	return true
}

func (uc *WizardUseCase) endSubmit(userID uuid.UUID) {
	uc.mu.Lock()
	delete(uc.inFlight, userID)
	uc.mu.Unlock()
}

// uploadStagedImage uploads the staged blob if one is attached. A
// dangling ref without a staged blob is skipped with a warning.
func (uc *WizardUseCase) uploadStagedImage(ctx context.Context, userID uuid.UUID, d *quiz.Draft) (*string, string, error) {
	if d.Answers.ProfileImageRef == "" {
		return nil, "", nil
	}

	img, err := uc.drafts.LoadImage(ctx, userID)
	if err != nil {
		return nil, "", apperror.NewUploadFailed("failed to read staged profile image", err)
	}
	if img == nil {
		uc.logger.Warn("Draft references a profile image but none is staged, submitting without one",
			zap.String("user_id", userID.String()))
		return nil, "", nil
	}

	folder := fmt.Sprintf("users/%s/profile", userID.String())
	ext := strings.ToLower(filepath.Ext(img.FileName))
	publicID := fmt.Sprintf("profile_%s%s", uuid.NewString()[:8], ext)

	url, err := uc.uploader.Upload(ctx, bytes.NewReader(img.Data), folder, publicID)
	if err != nil {
		return nil, "", apperror.NewUploadFailed("failed to upload profile image", err)
	}

	return &url, folder + "/" + publicID, nil
}

func buildProfile(userID uuid.UUID, a *quiz.Answers, imageURL *string, now time.Time) *profile.RoommateProfile {
	university := ""
	if len(a.Universities) > 0 {
		university = a.Universities[0]
	}
	completedAt := now
	return &profile.RoommateProfile{
		UserID:          userID,
		FullName:        a.FullName,
		Age:             a.Age,
		University:      university,
		Year:            a.Year,
		CountryOfOrigin: a.CountryOfOrigin,
		Languages:       a.Languages,
		SleepTime:       a.SleepTime,
		WakeTime:        a.WakeTime,
		Cleanliness:     a.Cleanliness,
		Visitors:        a.Visitors,
		Smoking:         a.Smoking,
		StudyHabits:     a.StudyHabits,
		MusicPreference: a.MusicPreference,
		Hobbies:         a.Hobbies,
		AdditionalInfo:  a.AdditionalInfo,
		ProfileImageURL: imageURL,
		CreatedAt:       now,
		CompletedAt:     &completedAt,
	}
}
