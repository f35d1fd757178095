package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Set_ValidatesEnumeratedFields(t *testing.T) {
	a := NewAnswers()

	assert.NoError(t, a.Set(FieldFullName, "Alex Nguyen"))
	assert.NoError(t, a.Set(FieldAge, "21"))
	assert.NoError(t, a.Set(FieldYear, "junior"))

	err := a.Set(FieldYear, "fifth-year")
	assert.Error(t, err)
	assert.Equal(t, "junior", a.Year)

	err = a.Set("nickname", "al")
	assert.Error(t, err)
}

func Test_Set_UniversityHoldsAtMostOne(t *testing.T) {
	a := NewAnswers()

	assert.NoError(t, a.Set(FieldUniversities, "unh"))
	assert.Equal(t, []string{"unh"}, a.Universities)

	assert.NoError(t, a.Set(FieldUniversities, "unh"))
	assert.Len(t, a.Universities, 1)

	assert.NoError(t, a.Set(FieldUniversities, ""))
	assert.Empty(t, a.Universities)
}

func Test_Add_Remove_KeepsOrderAndUniqueness(t *testing.T) {
	a := NewAnswers()

	assert.NoError(t, a.Add(FieldLanguages, "English"))
	assert.NoError(t, a.Add(FieldLanguages, "Vietnamese"))
	assert.NoError(t, a.Add(FieldLanguages, "English"))
	assert.Equal(t, []string{"English", "Vietnamese"}, a.Languages)

	assert.NoError(t, a.Remove(FieldLanguages, "English"))
	assert.Equal(t, []string{"Vietnamese"}, a.Languages)

	assert.NoError(t, a.Remove(FieldLanguages, "Klingon"))
	assert.Equal(t, []string{"Vietnamese"}, a.Languages)

	assert.Error(t, a.Add(FieldAge, "21"))
	assert.Error(t, a.Add(FieldHobbies, ""))
}

func Test_MissingRequired_PerStep(t *testing.T) {
	a := NewAnswers()

	assert.Equal(t,
		[]string{FieldFullName, FieldAge, FieldUniversities, FieldYear},
		a.MissingRequired(StepBasicInfo))

	a.Set(FieldFullName, "Alex")
	a.Set(FieldAge, "19")
	a.Set(FieldUniversities, "unh")
	a.Set(FieldYear, "freshman")
	assert.Empty(t, a.MissingRequired(StepBasicInfo))

	assert.Len(t, a.MissingRequired(StepLivingPreferences), 5)

	a.Set(FieldSleepTime, "after_midnight")
	a.Set(FieldWakeTime, "after_9am")
	a.Set(FieldCleanliness, "relaxed")
	a.Set(FieldVisitors, "sometimes")
	a.Set(FieldSmoking, "no")
	assert.Empty(t, a.MissingRequired(StepLivingPreferences))

	assert.Equal(t,
		[]string{FieldStudyHabits, FieldMusicPreference},
		a.MissingRequired(StepLifestyleActivities))
}

func Test_Draft_StepClamping(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, FirstStep, d.Step)

	d.Previous()
	assert.Equal(t, FirstStep, d.Step)

	d.Next()
	d.Next()
	assert.Equal(t, FinalStep, d.Step)

	d.Next()
	assert.Equal(t, FinalStep, d.Step)

	d.Previous()
	assert.Equal(t, StepLivingPreferences, d.Step)
}

func Test_Draft_Validate(t *testing.T) {
	d := NewDraft()
	assert.NoError(t, d.Validate())

	d.Step = 4
	assert.Error(t, d.Validate())

	d = NewDraft()
	d.Answers.SleepTime = "whenever"
	assert.Error(t, d.Validate())

	d = NewDraft()
	d.Answers.Universities = []string{"unh", "mit"}
	assert.Error(t, d.Validate())
}
