package dto

import "time"

// ExportRequest selects the class and output format of a timetable export.
type ExportRequest struct {
	ClassID string `json:"classId" validate:"required"`
	Format  string `json:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportResponse points at the stored export through a signed URL.
type ExportResponse struct {
	FileName  string    `json:"fileName"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
