package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func newTestSchoolDataService() (*SchoolDataService, *recordingInvalidator) {
	invalidator := &recordingInvalidator{}
	return NewSchoolDataService(NewWorkspaceService(nil, nil), invalidator, nil, nil), invalidator
}

func TestSchoolDataServiceUpdateSchool(t *testing.T) {
	svc, _ := newTestSchoolDataService()
	ctx := context.Background()

	school, err := svc.UpdateSchool(ctx, "school-1", models.School{SchoolName: "Green Valley"})
	require.NoError(t, err)
	assert.Equal(t, models.BoardCBSE, school.BoardType)

	_, err = svc.UpdateSchool(ctx, "school-1", models.School{})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = svc.UpdateSchool(ctx, "school-1", models.School{SchoolName: "x", BoardType: "IB"})
	requireAppError(t, err, appErrors.ErrValidation)

	ws, err := svc.Workspace(ctx, "school-1")
	require.NoError(t, err)
	assert.Equal(t, "Green Valley", ws.School.SchoolName)
}

func TestSchoolDataServiceUpdateTimeSlots(t *testing.T) {
	svc, _ := newTestSchoolDataService()
	ctx := context.Background()

	cfg := models.TimeSlotConfig{
		WeekdaySlots: []models.TimeSlot{
			{PeriodNumber: 1, StartTime: "08:00", EndTime: "08:45"},
			{PeriodNumber: 0, StartTime: "08:45", EndTime: "09:00", IsBreak: true},
			{PeriodNumber: 2, StartTime: "09:00", EndTime: "09:45"},
		},
		SaturdaySlots: []models.TimeSlot{{PeriodNumber: 1, StartTime: "08:00", EndTime: "08:45"}},
	}
	saved, err := svc.UpdateTimeSlots(ctx, "school-1", cfg)
	require.NoError(t, err)
	assert.Len(t, saved.WeekdaySlots, 3)

	cfg.WeekdaySlots = append(cfg.WeekdaySlots, models.TimeSlot{PeriodNumber: 2, StartTime: "10:00", EndTime: "10:45"})
	_, err = svc.UpdateTimeSlots(ctx, "school-1", cfg)
	appErr := requireAppError(t, err, appErrors.ErrValidation)
	assert.Equal(t, "weekday template repeats period 2", appErr.Message)
}

func TestSchoolDataServiceReplaceTeachersResyncsQualifications(t *testing.T) {
	svc, _ := newTestSchoolDataService()
	ctx := context.Background()

	teachers, err := svc.ReplaceTeachers(ctx, "school-1", []models.Teacher{
		{
			ID:              "n1",
			Name:            "New Maths",
			SubjectClassMap: []models.SubjectClassMapping{{Subject: " Mathematics ", ClassIDs: []string{"c1"}}},
			AvailableDays:   []models.Day{models.Monday, models.Monday, models.Tuesday},
		},
	})
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, models.RoleSubjectTeacher, teachers[0].Role)
	assert.Equal(t, []models.Day{models.Monday, models.Tuesday}, teachers[0].AvailableDays)
	assert.Equal(t, "Mathematics", teachers[0].SubjectClassMap[0].Subject)

	ws, err := svc.Workspace(ctx, "school-1")
	require.NoError(t, err)
	for _, subject := range ws.Subjects {
		if subject.ID == "c1_math" {
			assert.Equal(t, []string{"n1"}, subject.QualifiedTeacherIDs)
		}
		if subject.ID == "c2_math" {
			assert.Empty(t, subject.QualifiedTeacherIDs)
		}
	}
}

func TestSchoolDataServiceReplaceTeachersRejections(t *testing.T) {
	svc, _ := newTestSchoolDataService()
	ctx := context.Background()

	_, err := svc.ReplaceTeachers(ctx, "school-1", []models.Teacher{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}})
	appErr := requireAppError(t, err, appErrors.ErrValidation)
	assert.Equal(t, "duplicate teacher id a", appErr.Message)

	_, err = svc.ReplaceTeachers(ctx, "school-1", []models.Teacher{{ID: "a"}})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = svc.ReplaceTeachers(ctx, "school-1", []models.Teacher{{ID: "a", Name: "A", AvailableDays: []models.Day{9}}})
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestSchoolDataServiceReplaceClassesAndSubjects(t *testing.T) {
	svc, _ := newTestSchoolDataService()
	ctx := context.Background()

	classes, err := svc.ReplaceClasses(ctx, "school-1", []models.Class{{ID: "k1", Grade: "XI", Section: "A", Enabled: true}})
	require.NoError(t, err)
	assert.Len(t, classes, 1)

	_, err = svc.ReplaceSubjects(ctx, "school-1", []models.Subject{{ID: "s1", ClassID: "c1", Name: "Physics"}})
	appErr := requireAppError(t, err, appErrors.ErrValidation)
	assert.Equal(t, "subject s1 references unknown class c1", appErr.Message)

	subjects, err := svc.ReplaceSubjects(ctx, "school-1", []models.Subject{{ID: "s1", ClassID: "k1", Name: "Physics", PeriodsPerWeek: 4}})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, models.PriorityCore, subjects[0].Priority)
	assert.NotNil(t, subjects[0].QualifiedTeacherIDs)

	_, err = svc.ReplaceClasses(ctx, "school-1", []models.Class{{ID: "k1", Grade: "XI", Section: "A"}, {ID: "k1", Grade: "XI", Section: "B"}})
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestSchoolDataServiceSetTeacherAbsence(t *testing.T) {
	svc, _ := newTestSchoolDataService()
	ctx := context.Background()

	teacher, err := svc.SetTeacherAbsence(ctx, "school-1", "t3", true)
	require.NoError(t, err)
	assert.True(t, teacher.IsAbsent)

	_, err = svc.SetTeacherAbsence(ctx, "school-1", "ghost", true)
	requireAppError(t, err, appErrors.ErrNotFound)
}

func TestSchoolDataServiceImportLegacy(t *testing.T) {
	svc, invalidator := newTestSchoolDataService()
	ctx := context.Background()

	summary, err := svc.ImportLegacy(ctx, "school-1", dto.LegacyImportRequest{
		dto.LegacyKeyClasses: `[{"classId":"k1","grade":"XI","section":"A"}]`,
		dto.LegacyKeyTeachers: []interface{}{
			map[string]interface{}{
				"teacherId":       "n1",
				"name":            "Imported",
				"availableDays":   []interface{}{"Monday"},
				"subjectClassMap": []interface{}{map[string]interface{}{"subject": "Physics", "classIds": []interface{}{"k1"}}},
			},
		},
		dto.LegacyKeySubjects: `[{"subjectId":"k1_phy","classId":"k1","subjectName":"Physics","periodsPerWeek":"4"}]`,
		"unrelated":           "ignored",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.WorkspaceSection{models.SectionTeachers, models.SectionClasses, models.SectionSubjects}, summary.Sections)
	assert.Equal(t, 1, summary.Teachers)
	assert.Equal(t, 1, summary.Classes)
	assert.Equal(t, 1, summary.Subjects)
	assert.False(t, summary.Timetable)
	assert.Empty(t, invalidator.owners)

	ws, err := svc.Workspace(ctx, "school-1")
	require.NoError(t, err)
	require.Len(t, ws.Subjects, 1)
	assert.Equal(t, 4, ws.Subjects[0].PeriodsPerWeek)
	assert.Equal(t, []string{"n1"}, ws.Subjects[0].QualifiedTeacherIDs)
	assert.True(t, ws.Classes[0].Enabled)
}

func TestSchoolDataServiceImportLegacyTimetableInvalidatesCache(t *testing.T) {
	svc, invalidator := newTestSchoolDataService()

	summary, err := svc.ImportLegacy(context.Background(), "school-1", dto.LegacyImportRequest{
		dto.LegacyKeyTimetable: map[string]interface{}{
			"versionId": "v1",
			"status":    "Approved",
			"entries": []interface{}{
				map[string]interface{}{"timetableId": "e1", "classId": "c1", "day": "Tuesday", "period": 2, "subjectId": "c1_math", "teacherId": "t1"},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, summary.Timetable)
	assert.Equal(t, []string{"school-1"}, invalidator.owners)
}

func TestSchoolDataServiceImportLegacyRejectsEmpty(t *testing.T) {
	svc, _ := newTestSchoolDataService()

	_, err := svc.ImportLegacy(context.Background(), "school-1", dto.LegacyImportRequest{"other": "x"})
	appErr := requireAppError(t, err, appErrors.ErrValidation)
	assert.Equal(t, "import contains no known keys", appErr.Message)
}
