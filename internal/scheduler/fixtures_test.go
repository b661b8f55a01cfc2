package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

var fixedGeneratedAt = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

// slotTemplate builds teaching periods 1..n with a break after period 2.
func slotTemplate(n int) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, n+1)
	for p := 1; p <= n; p++ {
		start := 8*60 + (p-1)*45
		slots = append(slots, models.TimeSlot{
			PeriodNumber: p,
			StartTime:    fmt.Sprintf("%02d:%02d", start/60, start%60),
			EndTime:      fmt.Sprintf("%02d:%02d", (start+45)/60, (start+45)%60),
		})
		if p == 2 {
			slots = append(slots, models.TimeSlot{PeriodNumber: 0, IsBreak: true, Label: "Short Break"})
		}
	}
	return slots
}

func newTeacher(id string, subjects ...string) models.Teacher {
	return models.Teacher{
		ID:                id,
		Name:              "Teacher " + id,
		Role:              models.RoleSubjectTeacher,
		SubjectsCanTeach:  subjects,
		MaxPeriodsPerDay:  5,
		MaxPeriodsPerWeek: 30,
		AvailableDays:     append([]models.Day(nil), models.SchoolDays...),
	}
}

func newClass(id, grade, section string) models.Class {
	return models.Class{ID: id, Grade: grade, Section: section, Enabled: true}
}

func newSubject(id, classID, name string, perWeek, perDay int, teachers ...string) models.Subject {
	return models.Subject{
		ID:                  id,
		ClassID:             classID,
		Name:                name,
		PeriodsPerWeek:      perWeek,
		MaxPerDay:           perDay,
		Priority:            models.PriorityCore,
		QualifiedTeacherIDs: teachers,
	}
}

// sampleSchool is a three class school with contention on teachers, the lab
// and the playground.
func sampleSchool() GenerateInput {
	classes := []models.Class{
		newClass("c10a", "X", "A"),
		newClass("c10b", "X", "B"),
		newClass("c9a", "IX", "A"),
		{ID: "c8a", Grade: "VIII", Section: "A", Enabled: false},
	}
	classes[0].ClassTeacherID = "t-math1"
	classes[1].ClassTeacherID = "t-eng"
	classes[2].ClassTeacherID = "t-sci"

	teachers := []models.Teacher{
		newTeacher("t-math1", "Mathematics"),
		newTeacher("t-math2", "Mathematics"),
		newTeacher("t-sci", "Science"),
		newTeacher("t-eng", "English"),
		newTeacher("t-comp", "Computer"),
		newTeacher("t-pe", "Physical Education"),
		newTeacher("t-art", "Art"),
		newTeacher("t-absent", "Science"),
	}
	teachers[1].AvailableDays = []models.Day{models.Monday, models.Wednesday, models.Friday}
	teachers[2].MaxPeriodsPerDay = 4
	teachers[3].MaxPeriodsPerWeek = 20
	teachers[7].IsAbsent = true

	var subjects []models.Subject
	for _, class := range classes {
		math := newSubject("math-"+class.ID, class.ID, "Mathematics", 7, 2, "t-math1", "t-math2")
		math.AllowDoublePeriod = true
		science := newSubject("sci-"+class.ID, class.ID, "Science", 6, 2, "t-sci", "t-absent")
		english := newSubject("eng-"+class.ID, class.ID, "English", 6, 2, "t-eng")
		computer := newSubject("comp-"+class.ID, class.ID, "Computer", 3, 1, "t-comp")
		computer.IsLab = true
		computer.Priority = models.PriorityElective
		pe := newSubject("pe-"+class.ID, class.ID, "Physical Education", 3, 1, "t-pe")
		pe.NeedsPlayground = true
		pe.Priority = models.PriorityActivity
		art := newSubject("art-"+class.ID, class.ID, "Art", 3, 1, "t-art")
		art.Priority = models.PriorityActivity
		subjects = append(subjects, math, science, english, computer, pe, art)
	}

	return GenerateInput{
		Classes:       classes,
		Subjects:      subjects,
		Teachers:      teachers,
		WeekdaySlots:  slotTemplate(7),
		SaturdaySlots: slotTemplate(4),
		GeneratedAt:   fixedGeneratedAt,
	}
}

// assertScheduleInvariants checks the hard guarantees every generated
// timetable must satisfy.
func assertScheduleInvariants(t *testing.T, in GenerateInput, res Result, overfill bool) {
	t.Helper()

	teachers := make(map[string]models.Teacher)
	for _, teacher := range in.Teachers {
		teachers[teacher.ID] = teacher
	}
	subjects := make(map[string]models.Subject)
	for _, subject := range in.Subjects {
		subjects[subject.ID] = subject
	}

	type cell struct {
		owner  string
		day    models.Day
		period int
	}
	classCells := make(map[cell]bool)
	teacherCells := make(map[cell]bool)
	labCells := make(map[cell]int)
	playgroundCells := make(map[cell]int)
	teacherDay := make(map[cell]int)
	teacherWeek := make(map[string]int)
	subjectDay := make(map[cell]int)

	for _, e := range res.Entries {
		ck := cell{owner: e.ClassID, day: e.Day, period: e.Period}
		assert.False(t, classCells[ck], "class %s double booked at %s/%d", e.ClassID, e.Day, e.Period)
		classCells[ck] = true

		tk := cell{owner: e.TeacherID, day: e.Day, period: e.Period}
		assert.False(t, teacherCells[tk], "teacher %s double booked at %s/%d", e.TeacherID, e.Day, e.Period)
		teacherCells[tk] = true

		teacher := teachers[e.TeacherID]
		assert.True(t, teacher.AvailableOn(e.Day), "teacher %s not available on %s", e.TeacherID, e.Day)
		assert.False(t, teacher.IsAbsent, "absent teacher %s scheduled", e.TeacherID)

		teacherDay[cell{owner: e.TeacherID, day: e.Day}]++
		teacherWeek[e.TeacherID]++

		for _, kind := range heldResources(e, subjects) {
			if kind == ResourceLab {
				labCells[cell{day: e.Day, period: e.Period}]++
			} else {
				playgroundCells[cell{day: e.Day, period: e.Period}]++
			}
		}
		subjectDay[cell{owner: e.ClassID + "/" + e.SubjectID, day: e.Day}]++
	}

	for k, count := range teacherDay {
		assert.LessOrEqual(t, count, teachers[k.owner].MaxPeriodsPerDay, "daily cap for %s on %s", k.owner, k.day)
	}
	for id, count := range teacherWeek {
		assert.LessOrEqual(t, count, teachers[id].MaxPeriodsPerWeek, "weekly cap for %s", id)
	}
	for k, count := range labCells {
		assert.Equal(t, 1, count, "lab shared at %s/%d", k.day, k.period)
	}
	for k, count := range playgroundCells {
		assert.Equal(t, 1, count, "playground shared at %s/%d", k.day, k.period)
	}
	for _, e := range res.Entries {
		subject := subjects[e.SubjectID]
		if subject.MaxPerDay <= 0 {
			continue
		}
		limit := subject.MaxPerDay
		if overfill {
			limit++
		}
		assert.LessOrEqual(t, subjectDay[cell{owner: e.ClassID + "/" + e.SubjectID, day: e.Day}], limit)
	}

	assert.GreaterOrEqual(t, res.Score, 0)
	assert.LessOrEqual(t, res.Score, 100)
}

func entriesFor(entries []models.TimetableEntry, classID string) []models.TimetableEntry {
	var out []models.TimetableEntry
	for _, e := range entries {
		if e.ClassID == classID {
			out = append(out, e)
		}
	}
	return out
}
