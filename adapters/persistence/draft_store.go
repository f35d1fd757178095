package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/internal/domain/quiz"
	"github.com/roomnet/roomnet-api/pkg/apperror"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

// redisDraftStore keeps in-progress quiz state in Redis under three
// keys per user (step, form data, image preview) plus one for the
// staged image blob. All keys are written through on every mutation
// and deleted together on a successful submission.
type redisDraftStore struct {
	rdb    *redis.Client
	logger logger.Logger
}

func NewRedisDraftStore(rdb *redis.Client, log logger.Logger) quiz.DraftStore {
	return &redisDraftStore{rdb: rdb, logger: log}
}

func stepKey(userID uuid.UUID) string    { return fmt.Sprintf("quiz:%s:step", userID) }
func formKey(userID uuid.UUID) string    { return fmt.Sprintf("quiz:%s:form", userID) }
func previewKey(userID uuid.UUID) string { return fmt.Sprintf("quiz:%s:preview", userID) }
func imageKey(userID uuid.UUID) string   { return fmt.Sprintf("quiz:%s:image", userID) }

// decodeDraft rebuilds a draft from its persisted key values. Any
// corruption (unparseable step, bad form JSON, out-of-range step,
// invalid enum value) is an error so the caller can fall back to a
// fresh draft instead of surfacing broken state.
func decodeDraft(rawStep, rawForm, preview string) (*quiz.Draft, error) {
	step, err := strconv.Atoi(rawStep)
	if err != nil {
		return nil, fmt.Errorf("corrupt step value %q: %w", rawStep, err)
	}

	d := quiz.NewDraft()
	d.Step = step
	if err := json.Unmarshal([]byte(rawForm), &d.Answers); err != nil {
		return nil, fmt.Errorf("corrupt form data: %w", err)
	}
	d.ImagePreview = preview

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("persisted draft failed validation: %w", err)
	}
	return d, nil
}

// encodeDraft is the inverse of decodeDraft: the step and form values
// as they are written to the store.
func encodeDraft(d *quiz.Draft) (step string, form []byte, err error) {
	form, err = json.Marshal(d.Answers)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal quiz answers: %w", err)
	}
	return strconv.Itoa(d.Step), form, nil
}

func (s *redisDraftStore) Load(ctx context.Context, userID uuid.UUID) (*quiz.Draft, error) {
	vals, err := s.rdb.MGet(ctx, stepKey(userID), formKey(userID), previewKey(userID)).Result()
	if err != nil {
		return nil, apperror.NewInternal("failed to read quiz draft keys", err)
	}

	rawStep, okStep := vals[0].(string)
	rawForm, okForm := vals[1].(string)
	if !okStep || !okForm {
		return nil, nil
	}
	preview, _ := vals[2].(string)

	d, err := decodeDraft(rawStep, rawForm, preview)
	if err != nil {
		s.logger.Warn("Corrupt quiz draft in store, discarding",
			zap.String("user_id", userID.String()), zap.Error(err))
		return nil, nil
	}
	return d, nil
}

func (s *redisDraftStore) Save(ctx context.Context, userID uuid.UUID, d *quiz.Draft) error {
	step, form, err := encodeDraft(d)
	if err != nil {
		return apperror.NewInternal("failed to encode quiz draft", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, stepKey(userID), step, 0)
	pipe.Set(ctx, formKey(userID), form, 0)
	pipe.Set(ctx, previewKey(userID), d.ImagePreview, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperror.NewInternal("failed to write quiz draft keys", err)
	}
	return nil
}

func (s *redisDraftStore) Clear(ctx context.Context, userID uuid.UUID) error {
	err := s.rdb.Del(ctx, stepKey(userID), formKey(userID), previewKey(userID), imageKey(userID)).Err()
	if err != nil {
		return apperror.NewInternal("failed to clear quiz draft keys", err)
	}
	return nil
}

func (s *redisDraftStore) SaveImage(ctx context.Context, userID uuid.UUID, img *quiz.StagedImage) error {
	payload, err := json.Marshal(img)
	if err != nil {
		return apperror.NewInternal("failed to marshal staged image", err)
	}
	if err := s.rdb.Set(ctx, imageKey(userID), payload, 0).Err(); err != nil {
		return apperror.NewInternal("failed to stage image", err)
	}
	return nil
}

func (s *redisDraftStore) LoadImage(ctx context.Context, userID uuid.UUID) (*quiz.StagedImage, error) {
	raw, err := s.rdb.Get(ctx, imageKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewInternal("failed to read staged image", err)
	}
	img := &quiz.StagedImage{}
	if err := json.Unmarshal(raw, img); err != nil {
		s.logger.Warn("Corrupt staged image in store, discarding",
			zap.String("user_id", userID.String()), zap.Error(err))
		return nil, nil
	}
	return img, nil
}

func (s *redisDraftStore) SavePreview(ctx context.Context, userID uuid.UUID, dataURI string) error {
	if err := s.rdb.Set(ctx, previewKey(userID), dataURI, 0).Err(); err != nil {
		return apperror.NewInternal("failed to write image preview", err)
	}
	return nil
}
