package scheduler

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Validate runs the pre-flight checks. Generation should only be attempted
// when it returns an empty list.
func Validate(in GenerateInput) []string {
	var problems []string

	if len(models.TeachingSlots(in.WeekdaySlots)) == 0 {
		problems = append(problems, "no weekday teaching periods configured")
	}
	if len(in.Teachers) == 0 {
		problems = append(problems, "no teachers configured")
	}

	targets := TargetClasses(in.Classes, in.GradeRange)
	if len(targets) == 0 {
		problems = append(problems, "no enabled classes to schedule")
	}

	known := lo.SliceToMap(in.Teachers, func(t models.Teacher) (string, bool) { return t.ID, true })
	byClass := lo.GroupBy(in.Subjects, func(s models.Subject) string { return s.ClassID })
	for _, class := range targets {
		subjects := byClass[class.ID]
		if len(subjects) == 0 {
			problems = append(problems, fmt.Sprintf("%s: no subjects configured", class.Label()))
			continue
		}
		for _, subject := range subjects {
			qualified := lo.CountBy(subject.QualifiedTeacherIDs, func(id string) bool { return known[id] })
			if qualified == 0 {
				problems = append(problems, fmt.Sprintf("%s: subject %s has no qualified teacher", class.Label(), subject.Name))
			}
		}
	}

	return problems
}
