package scheduler

import (
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// SyncQualifications recomputes every subject's QualifiedTeacherIDs from the
// teachers' subject to class mappings. A mapping names a subject by name or id.
// The input slices are not modified.
func SyncQualifications(teachers []models.Teacher, subjects []models.Subject) []models.Subject {
	out := make([]models.Subject, len(subjects))
	for i, subject := range subjects {
		qualified := []string{}
		for _, teacher := range teachers {
			if mapsSubjectToClass(teacher, subject) {
				qualified = append(qualified, teacher.ID)
			}
		}
		subject.QualifiedTeacherIDs = qualified
		out[i] = subject
	}
	return out
}

func mapsSubjectToClass(teacher models.Teacher, subject models.Subject) bool {
	for _, m := range teacher.SubjectClassMap {
		name := strings.TrimSpace(m.Subject)
		if name != subject.ID && !subject.MatchesName(name) {
			continue
		}
		for _, classID := range m.ClassIDs {
			if classID == subject.ClassID {
				return true
			}
		}
	}
	return false
}
