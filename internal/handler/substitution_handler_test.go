package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type substitutionServiceMock struct {
	lastQuery dto.SuggestionQuery
	lastApply dto.ApplySubstitutionRequest
	lastPlan  dto.CoverPlanRequest
	applyErr  error
}

func (m *substitutionServiceMock) Suggest(ctx context.Context, ownerID string, query dto.SuggestionQuery) (*dto.SuggestionsResponse, error) {
	m.lastQuery = query
	return &dto.SuggestionsResponse{TeacherID: query.TeacherID, Day: models.Monday, Periods: []models.PeriodSuggestions{}}, nil
}

func (m *substitutionServiceMock) Apply(ctx context.Context, ownerID string, req dto.ApplySubstitutionRequest) (*models.TimetableEntry, error) {
	m.lastApply = req
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	return &models.TimetableEntry{TeacherID: req.SubstituteTeacherID, SubstitutedFor: req.AbsentTeacherID}, nil
}

func (m *substitutionServiceMock) Plan(ctx context.Context, ownerID string, req dto.CoverPlanRequest) (*models.CoverPlan, error) {
	m.lastPlan = req
	return &models.CoverPlan{Day: models.Monday, Applied: req.Apply}, nil
}

func TestSubstitutionHandlerSuggestionsBindsQuery(t *testing.T) {
	mockSvc := &substitutionServiceMock{}
	handler := NewSubstitutionHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/substitutions/suggestions?teacherId=t1&day=monday", "")
	handler.Suggestions(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", mockSvc.lastQuery.TeacherID)
	assert.Equal(t, "monday", mockSvc.lastQuery.Day)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"day":"Monday"`)
}

func TestSubstitutionHandlerApply(t *testing.T) {
	mockSvc := &substitutionServiceMock{}
	handler := NewSubstitutionHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/substitutions", `{"absentTeacherId":"t1","substituteTeacherId":"t2","day":"Tuesday","period":3}`)
	handler.Apply(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, mockSvc.lastApply.Period)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"substituted_for":"t1"`)
}

func TestSubstitutionHandlerApplyErrors(t *testing.T) {
	handler := NewSubstitutionHandler(&substitutionServiceMock{applyErr: appErrors.Clone(appErrors.ErrLocked, "timetable is locked")})

	c, w := newTestContext(http.MethodPost, "/substitutions", `{"absentTeacherId":"t1"`)
	handler.Apply(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodPost, "/substitutions", `{"absentTeacherId":"t1","substituteTeacherId":"t2","day":"Tuesday","period":3}`)
	handler.Apply(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "timetable is locked", decodeEnvelope(t, w).Error.Message)
}

func TestSubstitutionHandlerPlan(t *testing.T) {
	mockSvc := &substitutionServiceMock{}
	handler := NewSubstitutionHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/substitutions/plan", `{"day":"Monday","absentTeacherIds":["t1","t4"],"apply":true}`)
	handler.Plan(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"t1", "t4"}, mockSvc.lastPlan.AbsentTeacherIDs)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"applied":true`)
}
