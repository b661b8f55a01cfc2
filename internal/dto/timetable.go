package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// GenerateTimetableRequest asks for a new timetable version. A grade band
// regenerates only those classes and keeps the rest of the current version.
type GenerateTimetableRequest struct {
	GradeFrom     string `json:"gradeFrom"`
	GradeTo       string `json:"gradeTo"`
	AllowOverfill *bool  `json:"allowOverfill"`
	// Force generates even when validation reports problems.
	Force bool `json:"force"`
}

// ValidateTimetableRequest optionally narrows validation to a grade band.
type ValidateTimetableRequest struct {
	GradeFrom string `json:"gradeFrom"`
	GradeTo   string `json:"gradeTo"`
}

// ValidationResponse lists configuration problems found before generation.
type ValidationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// GenerateTimetableResponse carries the new version plus fill statistics.
type GenerateTimetableResponse struct {
	Version     *models.TimetableVersion `json:"version"`
	FilledSlots int                      `json:"filledSlots"`
	TotalSlots  int                      `json:"totalSlots"`
	FillRatio   float64                  `json:"fillRatio"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

// ClassTimetableResponse is one class's entries ordered by day then period.
type ClassTimetableResponse struct {
	ClassID   string                  `json:"classId"`
	ClassName string                  `json:"className"`
	Status    models.TimetableStatus  `json:"status"`
	Entries   []models.TimetableEntry `json:"entries"`
}
