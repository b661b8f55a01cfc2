package scheduler

import (
	"sort"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TeacherWorkload totals the periods teacherID holds in entries, per day and
// per class and subject.
func TeacherWorkload(teacherID string, entries []models.TimetableEntry, classes []models.Class, subjects []models.Subject) models.TeacherWorkload {
	classByID := lo.KeyBy(classes, func(c models.Class) string { return c.ID })
	subjectByID := lo.KeyBy(subjects, func(s models.Subject) string { return s.ID })

	type key struct{ classID, subjectID string }
	counts := make(map[key]int)
	workload := models.TeacherWorkload{TeacherID: teacherID, PerDay: make(map[models.Day]int)}

	for _, entry := range entries {
		if entry.TeacherID != teacherID {
			continue
		}
		workload.Total++
		workload.PerDay[entry.Day]++
		counts[key{classID: entry.ClassID, subjectID: entry.SubjectID}]++
	}

	workload.Breakdown = make([]models.WorkloadItem, 0, len(counts))
	for k, count := range counts {
		label := k.classID
		if class, ok := classByID[k.classID]; ok {
			label = class.Label()
		}
		name := k.subjectID
		if subject, ok := subjectByID[k.subjectID]; ok {
			name = subject.Name
		}
		workload.Breakdown = append(workload.Breakdown, models.WorkloadItem{
			ClassID:     k.classID,
			ClassLabel:  label,
			SubjectID:   k.subjectID,
			SubjectName: name,
			Count:       count,
		})
	}
	sort.Slice(workload.Breakdown, func(i, j int) bool {
		a, b := workload.Breakdown[i], workload.Breakdown[j]
		if a.ClassLabel != b.ClassLabel {
			return a.ClassLabel < b.ClassLabel
		}
		if a.SubjectName != b.SubjectName {
			return a.SubjectName < b.SubjectName
		}
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		return a.SubjectID < b.SubjectID
	})

	return workload
}
