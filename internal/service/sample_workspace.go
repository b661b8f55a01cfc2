package service

import (
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
)

// DefaultWorkspace is what a new owner starts from: a small sample school
// with a full day template and a half-day Saturday.
func DefaultWorkspace() *models.Workspace {
	allDays := append([]models.Day(nil), models.SchoolDays...)
	weekdays := append([]models.Day(nil), models.Weekdays...)

	classIDs := []string{"c1", "c2", "c3"}
	teacher := func(id, name string, role models.TeacherRole, perDay, perWeek int, days []models.Day, subjects ...string) models.Teacher {
		mapping := make([]models.SubjectClassMapping, 0, len(subjects))
		for _, subject := range subjects {
			mapping = append(mapping, models.SubjectClassMapping{Subject: subject, ClassIDs: append([]string(nil), classIDs...)})
		}
		return models.Teacher{
			ID:                id,
			Name:              name,
			Role:              role,
			SubjectsCanTeach:  subjects,
			ClassesHandled:    append([]string(nil), classIDs...),
			SubjectClassMap:   mapping,
			MaxPeriodsPerDay:  perDay,
			MaxPeriodsPerWeek: perWeek,
			AvailableDays:     append([]models.Day(nil), days...),
		}
	}

	teachers := []models.Teacher{
		teacher("t1", "Mrs. Sharma", models.RoleClassTeacher, 6, 30, allDays, "Mathematics"),
		teacher("t2", "Mr. Patel", models.RoleSubjectTeacher, 6, 28, allDays, "Science"),
		teacher("t3", "Ms. Gupta", models.RoleSubjectTeacher, 7, 32, allDays, "English"),
		teacher("t4", "Mr. Kumar", models.RoleClassTeacher, 6, 30, weekdays, "Hindi"),
		teacher("t5", "Mrs. Reddy", models.RoleSubjectTeacher, 5, 25, allDays, "Social Science"),
		teacher("t6", "Mr. Singh", models.RoleSubjectTeacher, 8, 35, allDays, "Physical Education"),
		teacher("t7", "Ms. Iyer", models.RoleClassTeacher, 6, 28, allDays, "Computer Science"),
	}

	var subjects []models.Subject
	for _, classID := range classIDs {
		subjects = append(subjects,
			models.Subject{ID: classID + "_math", ClassID: classID, Name: "Mathematics", PeriodsPerWeek: 6, MaxPerDay: 2, Priority: models.PriorityCore},
			models.Subject{ID: classID + "_sci", ClassID: classID, Name: "Science", PeriodsPerWeek: 6, MaxPerDay: 2, Priority: models.PriorityCore, AllowDoublePeriod: true},
			models.Subject{ID: classID + "_eng", ClassID: classID, Name: "English", PeriodsPerWeek: 6, MaxPerDay: 2, Priority: models.PriorityCore},
			models.Subject{ID: classID + "_hin", ClassID: classID, Name: "Hindi", PeriodsPerWeek: 5, MaxPerDay: 1, Priority: models.PriorityCore},
			models.Subject{ID: classID + "_sst", ClassID: classID, Name: "Social Science", PeriodsPerWeek: 5, MaxPerDay: 1, Priority: models.PriorityCore},
			models.Subject{ID: classID + "_pe", ClassID: classID, Name: "Physical Education", PeriodsPerWeek: 3, MaxPerDay: 1, Priority: models.PriorityActivity, NeedsPlayground: true},
			models.Subject{ID: classID + "_cs", ClassID: classID, Name: "Computer Science", PeriodsPerWeek: 3, MaxPerDay: 1, Priority: models.PriorityElective, IsLab: true, AllowDoublePeriod: true},
		)
	}

	return &models.Workspace{
		School: models.School{
			SchoolName:        "Sample Public School",
			BoardType:         models.BoardCBSE,
			AcademicYear:      "2025-26",
			DivisionsPerGrade: map[string][]string{"IX": {"A"}, "X": {"A", "B"}},
			CustomSubjects:    []string{},
		},
		TimeSlots: models.TimeSlotConfig{
			WeekdaySlots: []models.TimeSlot{
				{PeriodNumber: 1, StartTime: "08:00", EndTime: "08:40"},
				{PeriodNumber: 2, StartTime: "08:40", EndTime: "09:20"},
				{PeriodNumber: 3, StartTime: "09:20", EndTime: "10:00"},
				{PeriodNumber: 0, StartTime: "10:00", EndTime: "10:20", IsBreak: true, Label: "Short Break"},
				{PeriodNumber: 4, StartTime: "10:20", EndTime: "11:00"},
				{PeriodNumber: 5, StartTime: "11:00", EndTime: "11:40"},
				{PeriodNumber: 6, StartTime: "11:40", EndTime: "12:20"},
				{PeriodNumber: 0, StartTime: "12:20", EndTime: "13:00", IsBreak: true, Label: "Lunch Break"},
				{PeriodNumber: 7, StartTime: "13:00", EndTime: "13:40"},
				{PeriodNumber: 8, StartTime: "13:40", EndTime: "14:20"},
			},
			SaturdaySlots: []models.TimeSlot{
				{PeriodNumber: 1, StartTime: "08:00", EndTime: "08:40"},
				{PeriodNumber: 2, StartTime: "08:40", EndTime: "09:20"},
				{PeriodNumber: 3, StartTime: "09:20", EndTime: "10:00"},
				{PeriodNumber: 0, StartTime: "10:00", EndTime: "10:20", IsBreak: true, Label: "Short Break"},
				{PeriodNumber: 4, StartTime: "10:20", EndTime: "11:00"},
				{PeriodNumber: 5, StartTime: "11:00", EndTime: "11:40"},
			},
			SaturdayHalfDay: true,
		},
		Teachers: teachers,
		Classes: []models.Class{
			{ID: "c1", Grade: "X", Section: "A", ClassTeacherID: "t1", Enabled: true},
			{ID: "c2", Grade: "X", Section: "B", ClassTeacherID: "t4", Enabled: true},
			{ID: "c3", Grade: "IX", Section: "A", ClassTeacherID: "t7", Enabled: true},
		},
		Subjects: scheduler.SyncQualifications(teachers, subjects),
	}
}
