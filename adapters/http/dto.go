package http

import (
	"github.com/roomnet/roomnet-api/internal/domain/match"
	"github.com/roomnet/roomnet-api/internal/domain/profile"
	"github.com/roomnet/roomnet-api/internal/domain/quiz"
)

type DraftDTO struct {
	Step          int          `json:"step"`
	Answers       quiz.Answers `json:"answers"`
	ImagePreview  string       `json:"image_preview,omitempty"`
	MissingFields []string     `json:"missing_fields"`
}

func ToDraftDTO(d *quiz.Draft) DraftDTO {
	return DraftDTO{
		Step:          d.Step,
		Answers:       d.Answers,
		ImagePreview:  d.ImagePreview,
		MissingFields: d.Answers.MissingRequired(d.Step),
	}
}

type ProfileDTO struct {
	UserID          string   `json:"user_id"`
	FullName        string   `json:"full_name"`
	Age             string   `json:"age"`
	University      string   `json:"university"`
	Year            string   `json:"year"`
	CountryOfOrigin string   `json:"country_of_origin,omitempty"`
	Languages       []string `json:"languages"`
	SleepTime       string   `json:"sleep_time"`
	WakeTime        string   `json:"wake_time"`
	Cleanliness     string   `json:"cleanliness"`
	Visitors        string   `json:"visitors"`
	Smoking         string   `json:"smoking"`
	StudyHabits     string   `json:"study_habits"`
	MusicPreference string   `json:"music_preference"`
	Hobbies         []string `json:"hobbies"`
	AdditionalInfo  string   `json:"additional_info,omitempty"`
	ProfileImageURL *string  `json:"profile_image_url"`
	CompletedAt     string   `json:"completed_at,omitempty"`
}

func ToProfileDTO(p *profile.RoommateProfile) ProfileDTO {
	dto := ProfileDTO{
		UserID:          p.UserID.String(),
		FullName:        p.FullName,
		Age:             p.Age,
		University:      p.University,
		Year:            p.Year,
		CountryOfOrigin: p.CountryOfOrigin,
		Languages:       p.Languages,
		SleepTime:       p.SleepTime,
		WakeTime:        p.WakeTime,
		Cleanliness:     p.Cleanliness,
		Visitors:        p.Visitors,
		Smoking:         p.Smoking,
		StudyHabits:     p.StudyHabits,
		MusicPreference: p.MusicPreference,
		Hobbies:         p.Hobbies,
		AdditionalInfo:  p.AdditionalInfo,
		ProfileImageURL: p.ProfileImageURL,
	}
	if p.CompletedAt != nil {
		dto.CompletedAt = p.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return dto
}

type MatchDTO struct {
	MatchUserID     string   `json:"match_user_id"`
	Score           float64  `json:"score"`
	FullName        string   `json:"full_name"`
	University      string   `json:"university"`
	Year            string   `json:"year"`
	SleepTime       string   `json:"sleep_time"`
	Cleanliness     string   `json:"cleanliness"`
	Hobbies         []string `json:"hobbies"`
	ProfileImageURL *string  `json:"profile_image_url"`
}

func ToMatchDTOs(matches []match.MatchedProfile) []MatchDTO {
	dtos := make([]MatchDTO, 0, len(matches))
	for _, m := range matches {
		dtos = append(dtos, MatchDTO{
			MatchUserID:     m.MatchUserID.String(),
			Score:           m.Score,
			FullName:        m.FullName,
			University:      m.University,
			Year:            m.Year,
			SleepTime:       m.SleepTime,
			Cleanliness:     m.Cleanliness,
			Hobbies:         m.Hobbies,
			ProfileImageURL: m.ProfileImageURL,
		})
	}
	return dtos
}
