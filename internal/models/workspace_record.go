package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RecordKind names the list tables that store one JSON document per record.
type RecordKind string

const (
	RecordKindTeachers RecordKind = "teachers"
	RecordKindClasses  RecordKind = "classes"
	RecordKindSubjects RecordKind = "subjects"
)

// WorkspaceRecord is one row of a per-owner list table.
type WorkspaceRecord struct {
	ID        string         `db:"id"`
	OwnerID   string         `db:"owner_id"`
	RecordID  string         `db:"record_id"`
	Position  int            `db:"position"`
	Data      types.JSONText `db:"data"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}
