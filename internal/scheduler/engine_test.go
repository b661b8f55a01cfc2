package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestGenerateMinimalFill(t *testing.T) {
	in := GenerateInput{
		Classes:       []models.Class{newClass("c1", "10", "A")},
		Subjects:      []models.Subject{newSubject("s1", "c1", "Mathematics", 3, 1, "T1")},
		Teachers:      []models.Teacher{newTeacher("T1", "Mathematics")},
		WeekdaySlots:  slotTemplate(4),
		SaturdaySlots: slotTemplate(2),
		GeneratedAt:   fixedGeneratedAt,
	}

	res := Generate(in)

	require.Len(t, res.Entries, 3)
	days := map[models.Day]int{}
	for _, e := range res.Entries {
		assert.Equal(t, "s1", e.SubjectID)
		assert.Equal(t, "T1", e.TeacherID)
		assert.Equal(t, "Room 10-A", e.Room)
		assert.Equal(t, models.TimetableStatusDraft, e.Status)
		assert.Equal(t, fixedGeneratedAt, e.GeneratedAt)
		days[e.Day]++
	}
	assert.Len(t, days, 3)
	for _, count := range days {
		assert.Equal(t, 1, count)
	}
	assert.Empty(t, res.Errors)
	assert.Equal(t, 3, res.FilledSlots)
	assert.Equal(t, 22, res.TotalSlots)
	assert.Equal(t, 14, res.Score)
	assert.Equal(t, "tt_c1_Monday_1", res.Entries[0].ID)
	assert.Equal(t, "08:00 - 08:45", res.Entries[0].TimeSlot)
}

func TestGenerateIsDeterministic(t *testing.T) {
	first := Generate(sampleSchool())
	second := Generate(sampleSchool())

	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, first.Score, second.Score)
}

func TestGenerateRespectsHardConstraints(t *testing.T) {
	in := sampleSchool()
	res := Generate(in)

	require.NotEmpty(t, res.Entries)
	assertScheduleInvariants(t, in, res, false)
	assert.Empty(t, entriesFor(res.Entries, "c8a"), "disabled classes are skipped")
}

func TestGenerateWithOverfillRespectsHardConstraints(t *testing.T) {
	in := sampleSchool()
	in.AllowOverfill = true
	res := Generate(in)

	strict := Generate(sampleSchool())
	assert.GreaterOrEqual(t, len(res.Entries), len(strict.Entries))
	assertScheduleInvariants(t, in, res, true)
}

func TestGenerateUnsatisfiableSubjectIsUnderAssigned(t *testing.T) {
	in := GenerateInput{
		Classes: []models.Class{newClass("c1", "10", "A")},
		Subjects: []models.Subject{
			newSubject("math", "c1", "Mathematics", 3, 1, "T1"),
			newSubject("sci", "c1", "Science", 4, 1),
		},
		Teachers:      []models.Teacher{newTeacher("T1", "Mathematics")},
		WeekdaySlots:  slotTemplate(4),
		SaturdaySlots: slotTemplate(2),
	}

	problems := Validate(in)
	require.NotEmpty(t, problems)
	assert.Contains(t, problems, "10-A: subject Science has no qualified teacher")

	res := Generate(in)
	assert.Contains(t, res.Errors, "10-A: Science under-assigned (0/4 periods)")
	for _, e := range res.Entries {
		assert.NotEqual(t, "sci", e.SubjectID)
	}
}

func TestGeneratePreventsDoubleBookingOfSoleTeacher(t *testing.T) {
	in := GenerateInput{
		Classes: []models.Class{newClass("a", "10", "A"), newClass("b", "10", "B")},
		Subjects: []models.Subject{
			newSubject("math-a", "a", "Mathematics", 5, 1, "T1"),
			newSubject("math-b", "b", "Mathematics", 5, 1, "T1"),
		},
		Teachers:     []models.Teacher{newTeacher("T1", "Mathematics")},
		WeekdaySlots: slotTemplate(1),
	}

	res := Generate(in)

	assert.Len(t, entriesFor(res.Entries, "a"), 5)
	assert.Empty(t, entriesFor(res.Entries, "b"))
	assert.Contains(t, res.Errors, "10-B: no subject or teacher available for Monday period 1")
	assert.Contains(t, res.Errors, "10-B: Mathematics under-assigned (0/5 periods)")
	assertScheduleInvariants(t, in, res, false)
}

func TestGenerateFallsBackToAnotherQualifiedTeacher(t *testing.T) {
	in := GenerateInput{
		Classes: []models.Class{newClass("a", "10", "A"), newClass("b", "10", "B")},
		Subjects: []models.Subject{
			newSubject("math-a", "a", "Mathematics", 5, 1, "T1", "T2"),
			newSubject("math-b", "b", "Mathematics", 5, 1, "T1", "T2"),
		},
		Teachers:     []models.Teacher{newTeacher("T1", "Mathematics"), newTeacher("T2", "Mathematics")},
		WeekdaySlots: slotTemplate(1),
	}

	res := Generate(in)

	for _, e := range entriesFor(res.Entries, "a") {
		assert.Equal(t, "T1", e.TeacherID)
	}
	classB := entriesFor(res.Entries, "b")
	require.Len(t, classB, 5)
	for _, e := range classB {
		assert.Equal(t, "T2", e.TeacherID)
	}
	assert.Empty(t, res.Errors)
}

func TestGenerateKeepsLockedTeacherAcrossWeek(t *testing.T) {
	t1 := newTeacher("T1", "Mathematics")
	t1.AvailableDays = []models.Day{models.Monday, models.Tuesday, models.Thursday, models.Friday, models.Saturday}
	in := GenerateInput{
		Classes:      []models.Class{newClass("a", "10", "A")},
		Subjects:     []models.Subject{newSubject("math", "a", "Mathematics", 5, 1, "T1", "T2")},
		Teachers:     []models.Teacher{t1, newTeacher("T2", "Mathematics")},
		WeekdaySlots: slotTemplate(1),
	}

	res := Generate(in)

	require.Len(t, res.Entries, 5)
	for _, e := range res.Entries {
		if e.Day == models.Wednesday {
			assert.Equal(t, "T2", e.TeacherID)
			continue
		}
		assert.Equal(t, "T1", e.TeacherID)
	}
}

func TestGenerateSeedsClassTeacherAtDayEdges(t *testing.T) {
	class := newClass("a", "10", "A")
	class.ClassTeacherID = "CT"
	english := newSubject("eng", "a", "English", 10, 2, "CT")
	math := newSubject("math", "a", "Mathematics", 10, 2, "T2")
	math.AllowDoublePeriod = true
	in := GenerateInput{
		Classes:       []models.Class{class},
		Subjects:      []models.Subject{math, english},
		Teachers:      []models.Teacher{newTeacher("CT", "English"), newTeacher("T2", "Mathematics")},
		WeekdaySlots:  slotTemplate(4),
		SaturdaySlots: slotTemplate(2),
	}

	res := Generate(in)

	require.Len(t, res.Entries, 20)
	for _, e := range res.Entries {
		assert.NotEqual(t, models.Saturday, e.Day)
		if e.Period == 1 || e.Period == 4 {
			assert.Equal(t, "eng", e.SubjectID, "%s period %d", e.Day, e.Period)
			assert.Equal(t, "CT", e.TeacherID)
		} else {
			assert.Equal(t, "math", e.SubjectID, "%s period %d", e.Day, e.Period)
		}
	}
	assert.Empty(t, res.Errors)
}

func TestGenerateAvoidsDoublePeriodsWhenDisallowed(t *testing.T) {
	in := GenerateInput{
		Classes:      []models.Class{newClass("a", "10", "A")},
		Subjects:     []models.Subject{newSubject("math", "a", "Mathematics", 4, 2, "T1")},
		Teachers:     []models.Teacher{newTeacher("T1", "Mathematics")},
		WeekdaySlots: slotTemplate(3),
	}

	res := Generate(in)

	require.Len(t, res.Entries, 4)
	byDay := map[models.Day][]int{}
	for _, e := range res.Entries {
		byDay[e.Day] = append(byDay[e.Day], e.Period)
	}
	assert.Equal(t, []int{1, 3}, byDay[models.Monday])
	assert.Equal(t, []int{1, 3}, byDay[models.Tuesday])
	assert.Empty(t, res.Errors)
}

func TestGenerateSharesLabAcrossClasses(t *testing.T) {
	compA := newSubject("comp-a", "a", "Computer", 6, 1, "TA")
	compA.IsLab = true
	compB := newSubject("comp-b", "b", "Computer", 6, 1, "TB")
	compB.IsLab = true
	engB := newSubject("eng-b", "b", "English", 6, 1, "TE")
	engB.Priority = models.PriorityElective
	in := GenerateInput{
		Classes:       []models.Class{newClass("a", "10", "A"), newClass("b", "10", "B")},
		Subjects:      []models.Subject{compA, compB, engB},
		Teachers:      []models.Teacher{newTeacher("TA", "Computer"), newTeacher("TB", "Computer"), newTeacher("TE", "English")},
		WeekdaySlots:  slotTemplate(1),
		SaturdaySlots: slotTemplate(1),
	}

	res := Generate(in)

	classA := entriesFor(res.Entries, "a")
	require.Len(t, classA, 6)
	for _, e := range classA {
		assert.Equal(t, models.RoomComputerLab, e.Room)
	}
	classB := entriesFor(res.Entries, "b")
	require.Len(t, classB, 6)
	for _, e := range classB {
		assert.Equal(t, "eng-b", e.SubjectID)
		assert.Equal(t, "Room 10-B", e.Room)
	}
	assert.Contains(t, res.Errors, "10-B: Computer under-assigned (0/6 periods)")
	assertScheduleInvariants(t, in, res, false)
}

func TestGenerateOverfillPass(t *testing.T) {
	math := newSubject("math", "a", "Mathematics", 4, 1, "T1")
	math.AllowDoublePeriod = true
	english := newSubject("eng", "a", "English", 4, 1, "T2")
	english.AllowDoublePeriod = true
	in := GenerateInput{
		Classes:      []models.Class{newClass("a", "10", "A")},
		Subjects:     []models.Subject{math, english},
		Teachers:     []models.Teacher{newTeacher("T1", "Mathematics"), newTeacher("T2", "English")},
		WeekdaySlots: slotTemplate(2),
	}

	strict := Generate(in)
	assert.Len(t, strict.Entries, 8)
	assert.Empty(t, strict.Errors)
	assert.Equal(t, 80, strict.Score)

	in.AllowOverfill = true
	filled := Generate(in)
	assert.Len(t, filled.Entries, 10)
	assert.Equal(t, []string{
		"10-A: Mathematics over-assigned (5/4 periods)",
		"10-A: English over-assigned (5/4 periods)",
	}, filled.Errors)
	assert.Equal(t, 96, filled.Score)
	assertScheduleInvariants(t, in, filled, true)
}

func TestGenerateGradeRangeMergesPreviousEntries(t *testing.T) {
	classes := []models.Class{newClass("c10", "X", "A"), newClass("c9", "IX", "A")}
	previous := []models.TimetableEntry{
		{ID: "tt_c9_Monday_1", ClassID: "c9", Day: models.Monday, Period: 1, SubjectID: "old", TeacherID: "T1", Room: "Room IX-A"},
		{ID: "tt_c10_Monday_1", ClassID: "c10", Day: models.Monday, Period: 1, SubjectID: "stale", TeacherID: "T9", Room: "Room X-A"},
	}
	in := GenerateInput{
		Classes:      classes,
		Subjects:     []models.Subject{newSubject("math", "c10", "Mathematics", 1, 1, "T1")},
		Teachers:     []models.Teacher{newTeacher("T1", "Mathematics")},
		WeekdaySlots: slotTemplate(2),
		GradeRange:   &GradeRange{From: "X", To: "X"},
		Previous:     previous,
	}

	res := Generate(in)

	assert.Equal(t, []models.TimetableEntry{previous[0]}, entriesFor(res.Entries, "c9"))
	regenerated := entriesFor(res.Entries, "c10")
	require.Len(t, regenerated, 1)
	assert.Equal(t, models.Monday, regenerated[0].Day)
	assert.Equal(t, 2, regenerated[0].Period)
	assert.Equal(t, "T1", regenerated[0].TeacherID)
	assert.Contains(t, res.Errors, "X-A: no subject or teacher available for Monday period 1")
	assert.Equal(t, 20, res.TotalSlots)
}

func TestGenerateGradeRangeHonoursResourcesOfKeptEntries(t *testing.T) {
	robotics := newSubject("robotics-c9", "c9", "Robotics", 1, 1, "TR")
	robotics.IsLab = true
	robotics.NeedsPlayground = true
	pe := newSubject("pe-c10", "c10", "Physical Education", 1, 1, "TP")
	pe.NeedsPlayground = true

	cases := []struct {
		name string
		kept models.TimetableEntry
	}{
		{
			name: "lab and playground subject",
			kept: models.TimetableEntry{ID: "tt_c9_Monday_1", ClassID: "c9", Day: models.Monday, Period: 1, SubjectID: "robotics-c9", TeacherID: "TR", Room: models.RoomComputerLab},
		},
		{
			name: "unknown subject falls back to the room",
			kept: models.TimetableEntry{ID: "tt_c9_Monday_1", ClassID: "c9", Day: models.Monday, Period: 1, SubjectID: "retired", TeacherID: "TR", Room: models.RoomPlayground},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := GenerateInput{
				Classes:      []models.Class{newClass("c10", "X", "A"), newClass("c9", "IX", "A")},
				Subjects:     []models.Subject{robotics, pe},
				Teachers:     []models.Teacher{newTeacher("TR", "Robotics"), newTeacher("TP", "Physical Education")},
				WeekdaySlots: slotTemplate(1),
				GradeRange:   &GradeRange{From: "X", To: "X"},
				Previous:     []models.TimetableEntry{tc.kept},
			}

			res := Generate(in)

			regenerated := entriesFor(res.Entries, "c10")
			require.Len(t, regenerated, 1)
			assert.Equal(t, models.Tuesday, regenerated[0].Day)
			assert.Equal(t, models.RoomPlayground, regenerated[0].Room)
			assert.Contains(t, res.Errors, "X-A: no subject or teacher available for Monday period 1")
			assertScheduleInvariants(t, in, res, false)
		})
	}
}

func TestGenerateOrdersByPriorityThenRemainingNeed(t *testing.T) {
	art := newSubject("art", "a", "Art", 5, 1, "TA")
	art.Priority = models.PriorityActivity
	music := newSubject("music", "a", "Music", 3, 1, "TM")
	music.Priority = models.PriorityElective
	science := newSubject("sci", "a", "Science", 2, 1, "TS")
	math := newSubject("math", "a", "Mathematics", 4, 1, "T1")
	in := GenerateInput{
		Classes:  []models.Class{newClass("a", "10", "A")},
		Subjects: []models.Subject{art, music, science, math},
		Teachers: []models.Teacher{
			newTeacher("TA", "Art"), newTeacher("TM", "Music"),
			newTeacher("TS", "Science"), newTeacher("T1", "Mathematics"),
		},
		WeekdaySlots: slotTemplate(2),
		GeneratedAt:  fixedGeneratedAt,
	}

	res := Generate(in)

	byDay := map[models.Day][]string{}
	for _, e := range res.Entries {
		byDay[e.Day] = append(byDay[e.Day], e.SubjectID)
	}
	assert.Equal(t, []string{"math", "sci"}, byDay[models.Monday])
	assert.Equal(t, []string{"math", "sci"}, byDay[models.Tuesday])
	assert.Equal(t, []string{"math", "music"}, byDay[models.Wednesday])
	assert.Equal(t, []string{"math", "music"}, byDay[models.Thursday])
	assert.Equal(t, []string{"math", "music"}, byDay[models.Friday])
	assert.Equal(t, []string{"10-A: Art under-assigned (0/5 periods)"}, res.Errors)
	assertScheduleInvariants(t, in, res, false)
}

func TestTargetClassesFiltersByGradeAndEnabled(t *testing.T) {
	classes := []models.Class{
		newClass("a", "9", "A"),
		newClass("b", "10", "A"),
		{ID: "c", Grade: "10", Section: "B"},
		newClass("d", "12", "A"),
		newClass("b", "10", "A"),
	}

	targets := TargetClasses(classes, &GradeRange{From: "10", To: "11"})

	require.Len(t, targets, 1)
	assert.Equal(t, "b", targets[0].ID)
	assert.Len(t, TargetClasses(classes, nil), 3)
}
