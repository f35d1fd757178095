package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomnet/roomnet-api/internal/domain/quiz"
)

func Test_DraftCodec_RoundTrip(t *testing.T) {
	d := quiz.NewDraft()
	d.Step = quiz.StepLivingPreferences
	require.NoError(t, d.Answers.Set(quiz.FieldFullName, "Jamie Rivera"))
	require.NoError(t, d.Answers.Set(quiz.FieldAge, "21"))
	require.NoError(t, d.Answers.Set(quiz.FieldUniversities, "unh"))
	require.NoError(t, d.Answers.Set(quiz.FieldYear, "junior"))
	require.NoError(t, d.Answers.Set(quiz.FieldSleepTime, "after_midnight"))
	require.NoError(t, d.Answers.Add(quiz.FieldLanguages, "English"))
	require.NoError(t, d.Answers.Add(quiz.FieldHobbies, "climbing"))
	d.ImagePreview = "data:image/png;base64,cGl4"

	step, form, err := encodeDraft(d)
	require.NoError(t, err)

	got, err := decodeDraft(step, string(form), d.ImagePreview)
	require.NoError(t, err)
	assert.Equal(t, d.Step, got.Step)
	assert.Equal(t, d.Answers, got.Answers)
	assert.Equal(t, d.ImagePreview, got.ImagePreview)
}

func Test_DecodeDraft_MissingPreview(t *testing.T) {
	got, err := decodeDraft("1", "{}", "")
	require.NoError(t, err)
	assert.Equal(t, quiz.StepBasicInfo, got.Step)
	assert.Empty(t, got.ImagePreview)
}

func Test_DecodeDraft_CorruptStep(t *testing.T) {
	got, err := decodeDraft("abc", "{}", "")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func Test_DecodeDraft_StepOutOfRange(t *testing.T) {
	got, err := decodeDraft("7", "{}", "")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func Test_DecodeDraft_CorruptFormJSON(t *testing.T) {
	got, err := decodeDraft("1", "{", "")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func Test_DecodeDraft_InvalidEnumValue(t *testing.T) {
	got, err := decodeDraft("2", `{"sleepTime":"noon"}`, "")
	assert.Error(t, err)
	assert.Nil(t, got)
}
