package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus is the workflow state of a timetable version.
type TimetableStatus string

const (
	TimetableStatusDraft    TimetableStatus = "draft"
	TimetableStatusApproved TimetableStatus = "approved"
	TimetableStatusLocked   TimetableStatus = "locked"
)

// Room labels assigned to resource bound subjects.
const (
	RoomComputerLab = "Computer Lab"
	RoomPlayground  = "Playground"
)

// TimetableEntry is one scheduled (class, day, period) cell.
type TimetableEntry struct {
	ID             string          `json:"id"`
	ClassID        string          `json:"class_id"`
	Day            Day             `json:"day"`
	Period         int             `json:"period"`
	TimeSlot       string          `json:"time_slot"`
	SubjectID      string          `json:"subject_id"`
	TeacherID      string          `json:"teacher_id"`
	Room           string          `json:"room"`
	Status         TimetableStatus `json:"status"`
	SubstitutedFor string          `json:"substituted_for,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// TimetableVersion is one generation snapshot.
type TimetableVersion struct {
	ID          string           `json:"version_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Score       int              `json:"score"`
	Status      TimetableStatus  `json:"status"`
	IsActive    bool             `json:"is_active"`
	Entries     []TimetableEntry `json:"entries"`
	Errors      []string         `json:"errors"`
}

// Locked reports whether the version refuses generation and substitution.
func (v *TimetableVersion) Locked() bool {
	return v != nil && v.Status == TimetableStatusLocked
}

// TimetableVersionRow is the persisted form of the latest version of an owner.
type TimetableVersionRow struct {
	OwnerID     string         `db:"owner_id"`
	VersionID   string         `db:"version_id"`
	Status      string         `db:"status"`
	Score       int            `db:"score"`
	VersionData types.JSONText `db:"version_data"`
	GeneratedAt time.Time      `db:"generated_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}
