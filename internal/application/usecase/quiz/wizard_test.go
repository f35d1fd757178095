package quiz

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomnet/roomnet-api/internal/domain/profile"
	"github.com/roomnet/roomnet-api/internal/domain/quiz"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

type fakeDraftStore struct {
	mu       sync.Mutex
	drafts   map[uuid.UUID]*quiz.Draft
	images   map[uuid.UUID]*quiz.StagedImage
	previews map[uuid.UUID]string

	saveErr  error
	clearErr error
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{
		drafts:   make(map[uuid.UUID]*quiz.Draft),
		images:   make(map[uuid.UUID]*quiz.StagedImage),
		previews: make(map[uuid.UUID]string),
	}
}

func (s *fakeDraftStore) Load(_ context.Context, userID uuid.UUID) (*quiz.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[userID]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDraftStore) Save(_ context.Context, userID uuid.UUID, d *quiz.Draft) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.drafts[userID] = &cp
	return nil
}

func (s *fakeDraftStore) Clear(_ context.Context, userID uuid.UUID) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
	delete(s.images, userID)
	delete(s.previews, userID)
	return nil
}

func (s *fakeDraftStore) SaveImage(_ context.Context, userID uuid.UUID, img *quiz.StagedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[userID] = img
	return nil
}

func (s *fakeDraftStore) LoadImage(_ context.Context, userID uuid.UUID) (*quiz.StagedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images[userID], nil
}

func (s *fakeDraftStore) SavePreview(_ context.Context, userID uuid.UUID, dataURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews[userID] = dataURI
	return nil
}

func (s *fakeDraftStore) preview(userID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previews[userID]
}

type fakeProfileRepo struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*profile.RoommateProfile
	upsertErr error
	getErr    error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*profile.RoommateProfile)}
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*profile.RoommateProfile, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return &profile.RoommateProfile{UserID: userID, Languages: []string{}, Hobbies: []string{}}, nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *profile.RoommateProfile) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

type fakeUploader struct {
	mu        sync.Mutex
	uploads   []string
	uploadErr error

	deleted chan string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{deleted: make(chan string, 4)}
}

func (u *fakeUploader) Upload(_ context.Context, _ io.Reader, folder, publicID string) (string, error) {
	if u.uploadErr != nil {
		return "", u.uploadErr
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads = append(u.uploads, folder+"/"+publicID)
	return "https://cdn.example.com/" + folder + "/" + publicID, nil
}

func (u *fakeUploader) Delete(_ context.Context, publicID string) error {
	u.deleted <- publicID
	return nil
}

func (u *fakeUploader) uploadCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.uploads)
}

type fakePublisher struct {
	published chan [2]*profile.RoommateProfile
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: make(chan [2]*profile.RoommateProfile, 4)}
}

func (p *fakePublisher) PublishSurveyEvent(_ context.Context, oldRecord, newRecord *profile.RoommateProfile) error {
	p.published <- [2]*profile.RoommateProfile{oldRecord, newRecord}
	return nil
}

func newTestWizard() (*WizardUseCase, *fakeDraftStore, *fakeProfileRepo, *fakeUploader, *fakePublisher) {
	store := newFakeDraftStore()
	repo := newFakeProfileRepo()
	up := newFakeUploader()
	pub := newFakePublisher()
	uc := NewWizardUseCase(store, repo, up, pub, logger.NewNop())
	return uc, store, repo, up, pub
}

func completeDraft() *quiz.Draft {
	d := quiz.NewDraft()
	d.Answers.Set(quiz.FieldFullName, "Alex Nguyen")
	d.Answers.Set(quiz.FieldAge, "21")
	d.Answers.Set(quiz.FieldUniversities, "unh")
	d.Answers.Set(quiz.FieldYear, "junior")
	d.Answers.Set(quiz.FieldSleepTime, "10pm_to_midnight")
	d.Answers.Set(quiz.FieldWakeTime, "7am_to_9am")
	d.Answers.Set(quiz.FieldCleanliness, "moderately_clean")
	d.Answers.Set(quiz.FieldVisitors, "sometimes")
	d.Answers.Set(quiz.FieldSmoking, "no")
	d.Answers.Set(quiz.FieldStudyHabits, "library")
	d.Answers.Set(quiz.FieldMusicPreference, "headphones")
	d.Answers.Add(quiz.FieldHobbies, "Hiking")
	d.Step = quiz.FinalStep
	return d
}

func Test_Get_ReturnsFreshDraftWhenNoneStored(t *testing.T) {
	uc, _, _, _, _ := newTestWizard()
	userID := uuid.New()

	d, err := uc.Get(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, quiz.FirstStep, d.Step)
	assert.Empty(t, d.Answers.FullName)
}

func Test_EditField_WritesThrough(t *testing.T) {
	uc, store, _, _, _ := newTestWizard()
	userID := uuid.New()

	_, err := uc.EditField(context.Background(), userID, quiz.FieldFullName, "Alex Nguyen")
	require.NoError(t, err)

	stored, err := store.Load(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Alex Nguyen", stored.Answers.FullName)

	// a reload resumes from the stored draft, not a fresh one
	resumed, err := uc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Nguyen", resumed.Answers.FullName)
}

func Test_EditField_RejectsInvalidOption(t *testing.T) {
	uc, store, _, _, _ := newTestWizard()
	userID := uuid.New()

	_, err := uc.EditField(context.Background(), userID, quiz.FieldSmoking, "socially")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.BaseError, apperror.ErrInvalidInput)

	stored, _ := store.Load(context.Background(), userID)
	assert.Nil(t, stored)
}

func Test_Navigation_ClampsAndPersists(t *testing.T) {
	uc, _, _, _, _ := newTestWizard()
	userID := uuid.New()
	ctx := context.Background()

	d, err := uc.GoPrevious(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, quiz.FirstStep, d.Step)

	d, _ = uc.GoNext(ctx, userID)
	d, _ = uc.GoNext(ctx, userID)
	d, err = uc.GoNext(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, quiz.FinalStep, d.Step)

	d, err = uc.GoPrevious(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, quiz.StepLivingPreferences, d.Step)
}

func Test_Submit_RequiresSession(t *testing.T) {
	uc, _, _, _, _ := newTestWizard()

	_, err := uc.Submit(context.Background(), SubmitInput{UserID: uuid.Nil})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.BaseError, apperror.ErrNotAuthenticated)
}

func Test_Submit_RequiresFinalStep(t *testing.T) {
	uc, store, _, _, _ := newTestWizard()
	userID := uuid.New()

	d := completeDraft()
	d.Step = quiz.StepLivingPreferences
	require.NoError(t, store.Save(context.Background(), userID, d))

	_, err := uc.Submit(context.Background(), SubmitInput{UserID: userID})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.BaseError, apperror.ErrInvalidInput)
}

func Test_Submit_WithoutImage_SkipsUploader(t *testing.T) {
	uc, store, repo, up, pub := newTestWizard()
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, userID, completeDraft()))

	out, err := uc.Submit(ctx, SubmitInput{UserID: userID})
	require.NoError(t, err)

	assert.Zero(t, up.uploadCount())
	assert.Nil(t, out.Profile.ProfileImageURL)
	assert.NotNil(t, out.Profile.CompletedAt)
	assert.Equal(t, "unh", out.Profile.University)

	// draft erased only after success
	stored, _ := store.Load(ctx, userID)
	assert.Nil(t, stored)

	saved, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, saved.Completed())

	select {
	case ev := <-pub.published:
		assert.Nil(t, ev[0].CompletedAt)
		assert.NotNil(t, ev[1].CompletedAt)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a survey change event")
	}
}

func Test_Submit_UploadsStagedImage(t *testing.T) {
	uc, store, _, up, _ := newTestWizard()
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, userID, completeDraft()))
	_, err := uc.AttachImage(ctx, userID, "me.png", "image/png", []byte{0x89, 0x50})
	require.NoError(t, err)

	out, err := uc.Submit(ctx, SubmitInput{UserID: userID})
	require.NoError(t, err)

	assert.Equal(t, 1, up.uploadCount())
	require.NotNil(t, out.Profile.ProfileImageURL)
	assert.Contains(t, *out.Profile.ProfileImageURL, "users/"+userID.String()+"/profile")
}

func Test_Submit_UploadFailure_KeepsDraft(t *testing.T) {
	uc, store, repo, up, _ := newTestWizard()
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, userID, completeDraft()))
	_, err := uc.AttachImage(ctx, userID, "me.png", "image/png", []byte{0x89})
	require.NoError(t, err)

	up.uploadErr = errors.New("cloud unavailable")

	_, err = uc.Submit(ctx, SubmitInput{UserID: userID})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.BaseError, apperror.ErrUploadFailed)

	// nothing was persisted and the draft survives for a retry
	saved, _ := repo.GetByUserID(ctx, userID)
	assert.False(t, saved.Completed())
	stored, _ := store.Load(ctx, userID)
	assert.NotNil(t, stored)
}

func Test_Submit_PersistFailure_DeletesUploadedImage(t *testing.T) {
	uc, store, repo, up, _ := newTestWizard()
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, userID, completeDraft()))
	_, err := uc.AttachImage(ctx, userID, "me.png", "image/png", []byte{0x89})
	require.NoError(t, err)

	repo.upsertErr = errors.New("db down")

	_, err = uc.Submit(ctx, SubmitInput{UserID: userID})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.BaseError, apperror.ErrPersistFailed)

	select {
	case publicID := <-up.deleted:
		assert.Contains(t, publicID, "users/"+userID.String()+"/profile")
	case <-time.After(2 * time.Second):
		t.Fatal("expected the orphaned upload to be deleted")
	}

	stored, _ := store.Load(ctx, userID)
	assert.NotNil(t, stored)
}

func Test_Submit_DanglingImageRef_SubmitsWithoutImage(t *testing.T) {
	uc, store, _, up, _ := newTestWizard()
	userID := uuid.New()
	ctx := context.Background()

	d := completeDraft()
	d.Answers.ProfileImageRef = "quiz:" + userID.String() + ":image"
	require.NoError(t, store.Save(ctx, userID, d))

	out, err := uc.Submit(ctx, SubmitInput{UserID: userID})
	require.NoError(t, err)

	assert.Zero(t, up.uploadCount())
	assert.Nil(t, out.Profile.ProfileImageURL)
}

func Test_Submit_SingleFlight(t *testing.T) {
	uc, store, _, _, _ := newTestWizard()
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, userID, completeDraft()))

	require.True(t, uc.beginSubmit(userID))
	_, err := uc.Submit(ctx, SubmitInput{UserID: userID})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.BaseError, apperror.ErrConflict)

	uc.endSubmit(userID)
	_, err = uc.Submit(ctx, SubmitInput{UserID: userID})
	assert.NoError(t, err)
}

func Test_AttachImage_LatestSelectionWinsPreview(t *testing.T) {
	uc, store, _, _, _ := newTestWizard()
	userID := uuid.New()
	ctx := context.Background()

	_, err := uc.AttachImage(ctx, userID, "first.png", "image/png", []byte("first"))
	require.NoError(t, err)
	_, err = uc.AttachImage(ctx, userID, "second.png", "image/png", []byte("second"))
	require.NoError(t, err)

	// an encode for a superseded selection must never overwrite the
	// latest one
	uc.encodePreview(userID, 1, "image/png", []byte("first"))

	assert.Eventually(t, func() bool {
		p := store.preview(userID)
		return p != "" && p == "data:image/png;base64,c2Vjb25k"
	}, 2*time.Second, 10*time.Millisecond)
}

// gatedPreviewStore holds SavePreview calls at the door so a test can
// control when each in-flight write lands.
type gatedPreviewStore struct {
	*fakeDraftStore
	entered chan struct{}
	release chan struct{}
}

func (s *gatedPreviewStore) SavePreview(ctx context.Context, userID uuid.UUID, dataURI string) error {
	s.entered <- struct{}{}
	<-s.release
	return s.fakeDraftStore.SavePreview(ctx, userID, dataURI)
}

func Test_EncodePreview_SupersededWriteCannotLandLast(t *testing.T) {
	store := &gatedPreviewStore{
		fakeDraftStore: newFakeDraftStore(),
		entered:        make(chan struct{}, 2),
		release:        make(chan struct{}),
	}
	uc := NewWizardUseCase(store, newFakeProfileRepo(), newFakeUploader(), newFakePublisher(), logger.NewNop())
	userID := uuid.New()

	uc.mu.Lock()
	uc.selections[userID] = 1
	uc.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		uc.encodePreview(userID, 1, "image/png", []byte("old"))
	}()

	// wait until the first encode has passed its staleness check and is
	// held inside the store write, then supersede it
	<-store.entered
	uc.mu.Lock()
	uc.selections[userID] = 2
	uc.mu.Unlock()

	go func() {
		defer wg.Done()
		uc.encodePreview(userID, 2, "image/png", []byte("new"))
	}()

	close(store.release)
	wg.Wait()

	assert.Equal(t, "data:image/png;base64,bmV3", store.preview(userID))
}

func Test_CompletionStatus(t *testing.T) {
	uc, store, _, _, _ := newTestWizard()
	userID := uuid.New()
	ctx := context.Background()

	done, err := uc.CompletionStatus(ctx, userID)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, store.Save(ctx, userID, completeDraft()))
	_, err = uc.Submit(ctx, SubmitInput{UserID: userID})
	require.NoError(t, err)

	done, err = uc.CompletionStatus(ctx, userID)
	require.NoError(t, err)
	assert.True(t, done)
}
