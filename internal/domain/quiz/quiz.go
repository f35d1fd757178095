// Package quiz holds the onboarding quiz model: the three wizard steps,
// the answer sheet with its fixed option lists, and the draft that is
// persisted between requests so a user can leave and resume mid-quiz.
package quiz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const (
	StepBasicInfo           = 1
	StepLivingPreferences   = 2
	StepLifestyleActivities = 3

	FirstStep = StepBasicInfo
	FinalStep = StepLifestyleActivities
)

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var YearOptions = []Option{
	{ID: "freshman", Label: "Freshman"},
	{ID: "sophomore", Label: "Sophomore"},
	{ID: "junior", Label: "Junior"},
	{ID: "senior", Label: "Senior"},
	{ID: "graduate", Label: "Graduate"},
}

// AgeOptions covers the 18-30 student range shown on the quiz form.
var AgeOptions = func() []Option {
	opts := make([]Option, 0, 13)
	for age := 18; age <= 30; age++ {
		id := fmt.Sprintf("%d", age)
		opts = append(opts, Option{ID: id, Label: id})
	}
	return opts
}()

var UniversityOptions = []Option{
	{ID: "unh", Label: "University of New Hampshire"},
}

var SleepTimeOptions = []Option{
	{ID: "before_10pm", Label: "Before 10 PM"},
	{ID: "10pm_to_midnight", Label: "10 PM - Midnight"},
	{ID: "after_midnight", Label: "After Midnight"},
}

var WakeTimeOptions = []Option{
	{ID: "before_7am", Label: "Before 7 AM"},
	{ID: "7am_to_9am", Label: "7 AM - 9 AM"},
	{ID: "after_9am", Label: "After 9 AM"},
}

var CleanlinessOptions = []Option{
	{ID: "very_clean", Label: "Very Clean"},
	{ID: "moderately_clean", Label: "Moderately Clean"},
	{ID: "relaxed", Label: "Relaxed"},
}

var VisitorsOptions = []Option{
	{ID: "often", Label: "Often"},
	{ID: "sometimes", Label: "Sometimes"},
	{ID: "rarely", Label: "Rarely"},
}

var SmokingOptions = []Option{
	{ID: "no", Label: "No"},
	{ID: "outside_only", Label: "Outside Only"},
	{ID: "yes", Label: "Yes"},
}

var StudyHabitsOptions = []Option{
	{ID: "in_room", Label: "In My Room"},
	{ID: "library", Label: "Library"},
	{ID: "mixed", Label: "A Mix of Both"},
}

var MusicPreferenceOptions = []Option{
	{ID: "headphones", Label: "Headphones Only"},
	{ID: "speakers_low", Label: "Speakers at Low Volume"},
	{ID: "quiet", Label: "Prefer Quiet"},
}

// Field names as they appear on the wire and in the persisted draft.
const (
	FieldFullName        = "fullName"
	FieldAge             = "age"
	FieldUniversities    = "universities"
	FieldYear            = "year"
	FieldCountryOfOrigin = "countryOfOrigin"
	FieldLanguages       = "languages"
	FieldSleepTime       = "sleepTime"
	FieldWakeTime        = "wakeTime"
	FieldCleanliness     = "cleanliness"
	FieldVisitors        = "visitors"
	FieldSmoking         = "smoking"
	FieldStudyHabits     = "studyHabits"
	FieldMusicPreference = "musicPreference"
	FieldHobbies         = "hobbies"
	FieldAdditionalInfo  = "additionalInfo"
)

// enumeratedFields maps single-choice fields to their option lists.
var enumeratedFields = map[string][]Option{
	FieldAge:             AgeOptions,
	FieldUniversities:    UniversityOptions,
	FieldYear:            YearOptions,
	FieldSleepTime:       SleepTimeOptions,
	FieldWakeTime:        WakeTimeOptions,
	FieldCleanliness:     CleanlinessOptions,
	FieldVisitors:        VisitorsOptions,
	FieldSmoking:         SmokingOptions,
	FieldStudyHabits:     StudyHabitsOptions,
	FieldMusicPreference: MusicPreferenceOptions,
}

// Answers is the full answer sheet. Languages and Hobbies preserve
// insertion order for display.
type Answers struct {
	FullName        string   `json:"fullName"`
	Age             string   `json:"age"`
	Universities    []string `json:"universities"`
	Year            string   `json:"year"`
	CountryOfOrigin string   `json:"countryOfOrigin"`
	Languages       []string `json:"languages"`
	SleepTime       string   `json:"sleepTime"`
	WakeTime        string   `json:"wakeTime"`
	Cleanliness     string   `json:"cleanliness"`
	Visitors        string   `json:"visitors"`
	Smoking         string   `json:"smoking"`
	StudyHabits     string   `json:"studyHabits"`
	MusicPreference string   `json:"musicPreference"`
	Hobbies         []string `json:"hobbies"`
	AdditionalInfo  string   `json:"additionalInfo"`
	ProfileImageRef string   `json:"profileImageRef"`
}

func NewAnswers() Answers {
	return Answers{
		Universities: []string{},
		Languages:    []string{},
		Hobbies:      []string{},
	}
}

func validOption(field, value string) bool {
	opts, ok := enumeratedFields[field]
	if !ok {
		return true
	}
	for _, o := range opts {
		if o.ID == value {
			return true
		}
	}
	return false
}

// Set assigns a single-value field. University and country hold at most
// one entry; setting them replaces the prior value.
func (a *Answers) Set(field, value string) error {
	if value != "" && !validOption(field, value) {
		return fmt.Errorf("value %q is not a valid option for field %q", value, field)
	}
	switch field {
	case FieldFullName:
		a.FullName = value
	case FieldAge:
		a.Age = value
	case FieldUniversities:
		if value == "" {
			a.Universities = []string{}
		} else {
			a.Universities = []string{value}
		}
	case FieldYear:
		a.Year = value
	case FieldCountryOfOrigin:
		a.CountryOfOrigin = value
	case FieldSleepTime:
		a.SleepTime = value
	case FieldWakeTime:
		a.WakeTime = value
	case FieldCleanliness:
		a.Cleanliness = value
	case FieldVisitors:
		a.Visitors = value
	case FieldSmoking:
		a.Smoking = value
	case FieldStudyHabits:
		a.StudyHabits = value
	case FieldMusicPreference:
		a.MusicPreference = value
	case FieldAdditionalInfo:
		a.AdditionalInfo = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// Add appends an item to one of the multi-value fields, keeping
// insertion order and dropping duplicates.
func (a *Answers) Add(field, item string) error {
	if item == "" {
		return fmt.Errorf("empty item for field %q", field)
	}
	switch field {
	case FieldLanguages:
		a.Languages = appendUnique(a.Languages, item)
	case FieldHobbies:
		a.Hobbies = appendUnique(a.Hobbies, item)
	default:
		return fmt.Errorf("field %q is not a list field", field)
	}
	return nil
}

func (a *Answers) Remove(field, item string) error {
	switch field {
	case FieldLanguages:
		a.Languages = removeItem(a.Languages, item)
	case FieldHobbies:
		a.Hobbies = removeItem(a.Hobbies, item)
	default:
		return fmt.Errorf("field %q is not a list field", field)
	}
	return nil
}

func appendUnique(items []string, item string) []string {
	for _, it := range items {
		if it == item {
			return items
		}
	}
	return append(items, item)
}

func removeItem(items []string, item string) []string {
	out := items[:0]
	for _, it := range items {
		if it != item {
			out = append(out, it)
		}
	}
	return out
}

// Validate checks enumerated-field membership, used when deserializing
// a persisted draft so corrupt state falls back to defaults instead of
// reaching the client.
func (a *Answers) Validate() error {
	checks := map[string]string{
		FieldAge:             a.Age,
		FieldYear:            a.Year,
		FieldSleepTime:       a.SleepTime,
		FieldWakeTime:        a.WakeTime,
		FieldCleanliness:     a.Cleanliness,
		FieldVisitors:        a.Visitors,
		FieldSmoking:         a.Smoking,
		FieldStudyHabits:     a.StudyHabits,
		FieldMusicPreference: a.MusicPreference,
	}
	for field, value := range checks {
		if value != "" && !validOption(field, value) {
			return fmt.Errorf("field %q holds invalid value %q", field, value)
		}
	}
	if len(a.Universities) > 1 {
		return fmt.Errorf("more than one university selected")
	}
	for _, u := range a.Universities {
		if !validOption(FieldUniversities, u) {
			return fmt.Errorf("unknown university %q", u)
		}
	}
	return nil
}

// requiredByStep lists the fields the form marks required on each step.
var requiredByStep = map[int][]string{
	StepBasicInfo:           {FieldFullName, FieldAge, FieldUniversities, FieldYear},
	StepLivingPreferences:   {FieldSleepTime, FieldWakeTime, FieldCleanliness, FieldVisitors, FieldSmoking},
	StepLifestyleActivities: {FieldStudyHabits, FieldMusicPreference},
}

// MissingRequired reports which of a step's required fields are still
// empty. The wizard does not block on this; the client uses it to gate
// the Next control.
func (a *Answers) MissingRequired(step int) []string {
	missing := []string{}
	for _, field := range requiredByStep[step] {
		switch field {
		case FieldFullName:
			if a.FullName == "" {
				missing = append(missing, field)
			}
		case FieldAge:
			if a.Age == "" {
				missing = append(missing, field)
			}
		case FieldUniversities:
			if len(a.Universities) == 0 {
				missing = append(missing, field)
			}
		case FieldYear:
			if a.Year == "" {
				missing = append(missing, field)
			}
		case FieldSleepTime:
			if a.SleepTime == "" {
				missing = append(missing, field)
			}
		case FieldWakeTime:
			if a.WakeTime == "" {
				missing = append(missing, field)
			}
		case FieldCleanliness:
			if a.Cleanliness == "" {
				missing = append(missing, field)
			}
		case FieldVisitors:
			if a.Visitors == "" {
				missing = append(missing, field)
			}
		case FieldSmoking:
			if a.Smoking == "" {
				missing = append(missing, field)
			}
		case FieldStudyHabits:
			if a.StudyHabits == "" {
				missing = append(missing, field)
			}
		case FieldMusicPreference:
			if a.MusicPreference == "" {
				missing = append(missing, field)
			}
		}
	}
	return missing
}

// Draft is the working copy of a user's in-progress quiz. It is the
// only source of truth for mid-quiz state.
type Draft struct {
	Step         int     `json:"step"`
	Answers      Answers `json:"answers"`
	ImagePreview string  `json:"imagePreview"`
}

func NewDraft() *Draft {
	return &Draft{
		Step:    FirstStep,
		Answers: NewAnswers(),
	}
}

// Next advances one step, stopping at the final step.
func (d *Draft) Next() {
	if d.Step < FinalStep {
		d.Step++
	}
}

// Previous retreats one step, stopping at the first step.
func (d *Draft) Previous() {
	if d.Step > FirstStep {
		d.Step--
	}
}

func (d *Draft) Validate() error {
	if d.Step < FirstStep || d.Step > FinalStep {
		return fmt.Errorf("step %d out of range", d.Step)
	}
	return d.Answers.Validate()
}

// StagedImage is a profile picture the user attached but which has not
// been uploaded to object storage yet. Data stays staged until submit.
type StagedImage struct {
	Ref         string `json:"ref"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// DraftStore persists drafts between requests. Save overwrites the
// whole draft after every mutation; Clear removes the draft and any
// staged image together.
type DraftStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*Draft, error)
	Save(ctx context.Context, userID uuid.UUID, draft *Draft) error
	Clear(ctx context.Context, userID uuid.UUID) error
	SaveImage(ctx context.Context, userID uuid.UUID, img *StagedImage) error
	LoadImage(ctx context.Context, userID uuid.UUID) (*StagedImage, error)
	SavePreview(ctx context.Context, userID uuid.UUID, dataURI string) error
}
