package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type schoolDataServiceMock struct {
	ws            *models.Workspace
	lastOwner     string
	lastTeachers  []models.Teacher
	lastAbsent    *bool
	lastTeacherID string
	lastImport    dto.LegacyImportRequest
	replaceErr    error
}

func (m *schoolDataServiceMock) Workspace(ctx context.Context, ownerID string) (*models.Workspace, error) {
	m.lastOwner = ownerID
	return m.ws, nil
}

func (m *schoolDataServiceMock) UpdateSchool(ctx context.Context, ownerID string, school models.School) (*models.School, error) {
	return &school, nil
}

func (m *schoolDataServiceMock) UpdateTimeSlots(ctx context.Context, ownerID string, cfg models.TimeSlotConfig) (*models.TimeSlotConfig, error) {
	return &cfg, nil
}

func (m *schoolDataServiceMock) ReplaceTeachers(ctx context.Context, ownerID string, teachers []models.Teacher) ([]models.Teacher, error) {
	m.lastTeachers = teachers
	return teachers, m.replaceErr
}

func (m *schoolDataServiceMock) ReplaceClasses(ctx context.Context, ownerID string, classes []models.Class) ([]models.Class, error) {
	return classes, nil
}

func (m *schoolDataServiceMock) ReplaceSubjects(ctx context.Context, ownerID string, subjects []models.Subject) ([]models.Subject, error) {
	return subjects, nil
}

func (m *schoolDataServiceMock) SetTeacherAbsence(ctx context.Context, ownerID, teacherID string, absent bool) (*models.Teacher, error) {
	m.lastTeacherID = teacherID
	m.lastAbsent = &absent
	return &models.Teacher{ID: teacherID, IsAbsent: absent}, nil
}

func (m *schoolDataServiceMock) ImportLegacy(ctx context.Context, ownerID string, req dto.LegacyImportRequest) (*dto.ImportSummary, error) {
	m.lastImport = req
	return &dto.ImportSummary{Sections: []models.WorkspaceSection{models.SectionClasses}, Classes: 1}, nil
}

func sampleWorkspace() *models.Workspace {
	return &models.Workspace{
		School: models.School{SchoolName: "Sample"},
		Classes: []models.Class{
			{ID: "c1", Grade: "X", Section: "A", Enabled: true},
		},
		Subjects: []models.Subject{
			{ID: "c1_math", ClassID: "c1", Name: "Mathematics"},
			{ID: "c2_math", ClassID: "c2", Name: "Mathematics"},
		},
	}
}

func TestSchoolDataHandlerReads(t *testing.T) {
	mockSvc := &schoolDataServiceMock{ws: sampleWorkspace()}
	handler := NewSchoolDataHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/school", "")
	withOwner(c, "school-1", models.RoleViewer)
	handler.GetSchool(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "school-1", mockSvc.lastOwner)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"school_name":"Sample"`)

	c, w = newTestContext(http.MethodGet, "/classes", "")
	handler.ListClasses(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AnonymousOwner, mockSvc.lastOwner)
}

func TestSchoolDataHandlerListSubjectsFiltersByClass(t *testing.T) {
	handler := NewSchoolDataHandler(&schoolDataServiceMock{ws: sampleWorkspace()})

	c, w := newTestContext(http.MethodGet, "/subjects?classId=c2", "")
	handler.ListSubjects(c)
	require.Equal(t, http.StatusOK, w.Code)

	var subjects []models.Subject
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &subjects))
	require.Len(t, subjects, 1)
	assert.Equal(t, "c2_math", subjects[0].ID)

	c, w = newTestContext(http.MethodGet, "/subjects?classId=none", "")
	handler.ListSubjects(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", string(decodeEnvelope(t, w).Data))
}

func TestSchoolDataHandlerListsArePaginated(t *testing.T) {
	ws := sampleWorkspace()
	ws.Teachers = []models.Teacher{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	handler := NewSchoolDataHandler(&schoolDataServiceMock{ws: ws})

	c, w := newTestContext(http.MethodGet, "/teachers", "")
	handler.ListTeachers(c)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, models.Pagination{Page: 1, PageSize: 3, TotalCount: 3}, *env.Pagination)

	c, w = newTestContext(http.MethodGet, "/teachers?page=2&limit=2", "")
	handler.ListTeachers(c)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	var teachers []models.Teacher
	require.NoError(t, json.Unmarshal(env.Data, &teachers))
	require.Len(t, teachers, 1)
	assert.Equal(t, "t3", teachers[0].ID)
	assert.Equal(t, models.Pagination{Page: 2, PageSize: 2, TotalCount: 3}, *env.Pagination)

	c, w = newTestContext(http.MethodGet, "/teachers?page=5&limit=2", "")
	handler.ListTeachers(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", string(decodeEnvelope(t, w).Data))

	c, w = newTestContext(http.MethodGet, "/subjects?classId=c1&limit=1", "")
	handler.ListSubjects(c)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	assert.Equal(t, 1, env.Pagination.TotalCount)
}

func TestSchoolDataHandlerReplaceTeachers(t *testing.T) {
	mockSvc := &schoolDataServiceMock{}
	handler := NewSchoolDataHandler(mockSvc)

	c, w := newTestContext(http.MethodPut, "/teachers", `{"teachers":[{"id":"t1","name":"A","available_days":["Monday","Saturday"]}]}`)
	handler.ReplaceTeachers(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mockSvc.lastTeachers, 1)
	assert.Equal(t, []models.Day{models.Monday, models.Saturday}, mockSvc.lastTeachers[0].AvailableDays)

	c, w = newTestContext(http.MethodPut, "/teachers", `{"teachers":[{"id":"t1","available_days":["Sunday"]}]}`)
	handler.ReplaceTeachers(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	mockSvc.replaceErr = appErrors.Clone(appErrors.ErrValidation, "duplicate teacher id t1")
	c, w = newTestContext(http.MethodPut, "/teachers", `{"teachers":[]}`)
	handler.ReplaceTeachers(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "duplicate teacher id t1", decodeEnvelope(t, w).Error.Message)
}

func TestSchoolDataHandlerSetAbsence(t *testing.T) {
	mockSvc := &schoolDataServiceMock{}
	handler := NewSchoolDataHandler(mockSvc)

	c, w := newTestContext(http.MethodPatch, "/teachers/t3/absence", `{}`)
	handler.SetAbsence(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, mockSvc.lastAbsent)

	c, w = newTestContext(http.MethodPatch, "/teachers/t3/absence", `{"isAbsent":false}`)
	c.Params = append(c.Params, ginParam("id", "t3"))
	handler.SetAbsence(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastAbsent)
	assert.False(t, *mockSvc.lastAbsent)
	assert.Equal(t, "t3", mockSvc.lastTeacherID)
}

func TestSchoolDataHandlerImportLegacy(t *testing.T) {
	mockSvc := &schoolDataServiceMock{}
	handler := NewSchoolDataHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/import/legacy", `{"aceedx_classes":"[{\"classId\":\"c1\"}]"}`)
	handler.ImportLegacy(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `[{"classId":"c1"}]`, mockSvc.lastImport[dto.LegacyKeyClasses])

	c, w = newTestContext(http.MethodPost, "/import/legacy", `[1,2]`)
	handler.ImportLegacy(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
