package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// SuggestionQuery selects the absent teacher and day to cover.
type SuggestionQuery struct {
	TeacherID string `form:"teacherId" validate:"required"`
	Day       string `form:"day" validate:"required"`
}

// SuggestionsResponse lists ranked candidates per affected period.
type SuggestionsResponse struct {
	TeacherID string                     `json:"teacherId"`
	Day       models.Day                 `json:"day"`
	Periods   []models.PeriodSuggestions `json:"periods"`
}

// ApplySubstitutionRequest hands one period of an absent teacher to a substitute.
type ApplySubstitutionRequest struct {
	AbsentTeacherID     string `json:"absentTeacherId" validate:"required"`
	SubstituteTeacherID string `json:"substituteTeacherId" validate:"required,nefield=AbsentTeacherID"`
	Day                 string `json:"day" validate:"required"`
	Period              int    `json:"period" validate:"required,min=1"`
}

// CoverPlanRequest plans cover for every absent teacher of a day. Without
// AbsentTeacherIDs the teachers flagged absent in the workspace are used.
type CoverPlanRequest struct {
	Day              string   `json:"day" validate:"required"`
	AbsentTeacherIDs []string `json:"absentTeacherIds" validate:"omitempty,dive,required"`
	Apply            bool     `json:"apply"`
}
