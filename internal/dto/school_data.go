package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// ReplaceTeachersRequest replaces the whole teacher list.
type ReplaceTeachersRequest struct {
	Teachers []models.Teacher `json:"teachers" validate:"dive"`
}

// ReplaceClassesRequest replaces the whole class list.
type ReplaceClassesRequest struct {
	Classes []models.Class `json:"classes" validate:"dive"`
}

// ReplaceSubjectsRequest replaces the whole subject list.
type ReplaceSubjectsRequest struct {
	Subjects []models.Subject `json:"subjects" validate:"dive"`
}

// SetAbsenceRequest toggles a teacher's absence flag.
type SetAbsenceRequest struct {
	IsAbsent *bool `json:"isAbsent" validate:"required"`
}

// ImportSummary reports what a legacy import replaced.
type ImportSummary struct {
	Sections  []models.WorkspaceSection `json:"sections"`
	Teachers  int                       `json:"teachers"`
	Classes   int                       `json:"classes"`
	Subjects  int                       `json:"subjects"`
	Timetable bool                      `json:"timetable"`
}
