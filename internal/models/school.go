package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// BoardType identifies the curriculum board a school follows.
type BoardType string

const (
	BoardCBSE  BoardType = "CBSE"
	BoardICSE  BoardType = "ICSE"
	BoardState BoardType = "STATE"
)

// School holds the school wide settings of a workspace.
type School struct {
	SchoolName        string              `json:"school_name" validate:"required"`
	BoardType         BoardType           `json:"board_type" validate:"omitempty,oneof=CBSE ICSE STATE"`
	AcademicYear      string              `json:"academic_year"`
	DivisionsPerGrade map[string][]string `json:"divisions_per_grade"`
	CustomSubjects    []string            `json:"custom_subjects"`
}

// SchoolSettingsRow is the persisted form of School, one row per owner.
type SchoolSettingsRow struct {
	OwnerID           string         `db:"owner_id"`
	SchoolName        string         `db:"school_name"`
	BoardType         string         `db:"board_type"`
	AcademicYear      string         `db:"academic_year"`
	DivisionsPerGrade types.JSONText `db:"divisions_per_grade"`
	CustomSubjects    pq.StringArray `db:"custom_subjects"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}
