package models

import "strings"

// TeacherRole distinguishes home-room class teachers from subject teachers.
type TeacherRole string

const (
	RoleSubjectTeacher TeacherRole = "SubjectTeacher"
	RoleClassTeacher   TeacherRole = "ClassTeacher"
)

// SubjectClassMapping declares which classes a teacher handles for one subject.
type SubjectClassMapping struct {
	Subject  string   `json:"subject"`
	ClassIDs []string `json:"class_ids"`
}

// Teacher is a staff member who can be scheduled.
type Teacher struct {
	ID                string                `json:"id" validate:"required"`
	Name              string                `json:"name" validate:"required"`
	Role              TeacherRole           `json:"teacher_role" validate:"omitempty,oneof=SubjectTeacher ClassTeacher"`
	SubjectsCanTeach  []string              `json:"subjects_can_teach"`
	ClassesHandled    []string              `json:"classes_handled"`
	SubjectClassMap   []SubjectClassMapping `json:"subject_class_map"`
	MaxPeriodsPerDay  int                   `json:"max_periods_per_day" validate:"gte=0"`
	MaxPeriodsPerWeek int                   `json:"max_periods_per_week" validate:"gte=0"`
	AvailableDays     []Day                 `json:"available_days"`
	IsAbsent          bool                  `json:"is_absent"`
}

// AvailableOn reports whether the teacher works on day.
func (t Teacher) AvailableOn(day Day) bool {
	for _, d := range t.AvailableDays {
		if d == day {
			return true
		}
	}
	return false
}

// TeachesSubject reports whether the teacher declares subjectName either in the
// subject to class mapping or in the free-form list of teachable subjects.
func (t Teacher) TeachesSubject(subjectName string) bool {
	name := strings.TrimSpace(subjectName)
	for _, m := range t.SubjectClassMap {
		if strings.EqualFold(strings.TrimSpace(m.Subject), name) {
			return true
		}
	}
	for _, s := range t.SubjectsCanTeach {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}
