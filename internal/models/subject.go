package models

import "strings"

// SubjectPriority orders subjects during slot filling; Core goes first.
type SubjectPriority string

const (
	PriorityCore     SubjectPriority = "Core"
	PriorityElective SubjectPriority = "Elective"
	PriorityActivity SubjectPriority = "Activity"
)

// Rank returns the ordering tier of the priority. Unknown values sort last.
func (p SubjectPriority) Rank() int {
	switch p {
	case PriorityCore:
		return 0
	case PriorityElective:
		return 1
	case PriorityActivity:
		return 2
	default:
		return 3
	}
}

// Subject is a subject taught to exactly one class.
type Subject struct {
	ID                  string          `json:"id" validate:"required"`
	ClassID             string          `json:"class_id" validate:"required"`
	Name                string          `json:"subject_name" validate:"required"`
	PeriodsPerWeek      int             `json:"periods_per_week" validate:"gte=0"`
	MaxPerDay           int             `json:"max_per_day" validate:"gte=0"`
	Priority            SubjectPriority `json:"priority" validate:"omitempty,oneof=Core Elective Activity"`
	IsLab               bool            `json:"is_lab"`
	NeedsPlayground     bool            `json:"needs_playground"`
	AllowDoublePeriod   bool            `json:"allow_double_period"`
	QualifiedTeacherIDs []string        `json:"qualified_teacher_ids"`
}

// MatchesName compares subject names case-insensitively.
func (s Subject) MatchesName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name))
}

// IsQualified reports whether teacherID is listed as qualified for the subject.
func (s Subject) IsQualified(teacherID string) bool {
	for _, id := range s.QualifiedTeacherIDs {
		if id == teacherID {
			return true
		}
	}
	return false
}
