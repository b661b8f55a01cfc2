package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type schoolDataService interface {
	Workspace(ctx context.Context, ownerID string) (*models.Workspace, error)
	UpdateSchool(ctx context.Context, ownerID string, school models.School) (*models.School, error)
	UpdateTimeSlots(ctx context.Context, ownerID string, cfg models.TimeSlotConfig) (*models.TimeSlotConfig, error)
	ReplaceTeachers(ctx context.Context, ownerID string, teachers []models.Teacher) ([]models.Teacher, error)
	ReplaceClasses(ctx context.Context, ownerID string, classes []models.Class) ([]models.Class, error)
	ReplaceSubjects(ctx context.Context, ownerID string, subjects []models.Subject) ([]models.Subject, error)
	SetTeacherAbsence(ctx context.Context, ownerID, teacherID string, absent bool) (*models.Teacher, error)
	ImportLegacy(ctx context.Context, ownerID string, req dto.LegacyImportRequest) (*dto.ImportSummary, error)
}

// SchoolDataHandler reads and replaces the school configuration.
type SchoolDataHandler struct {
	service schoolDataService
}

func NewSchoolDataHandler(svc schoolDataService) *SchoolDataHandler {
	return &SchoolDataHandler{service: svc}
}

func (h *SchoolDataHandler) workspace(c *gin.Context) (*models.Workspace, bool) {
	ws, err := h.service.Workspace(c.Request.Context(), ownerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return ws, true
}

// Workspace godoc
// @Summary Full workspace
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /workspace [get]
func (h *SchoolDataHandler) Workspace(c *gin.Context) {
	if ws, ok := h.workspace(c); ok {
		response.JSON(c, http.StatusOK, ws, nil)
	}
}

// GetSchool godoc
// @Summary School settings
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /school [get]
func (h *SchoolDataHandler) GetSchool(c *gin.Context) {
	if ws, ok := h.workspace(c); ok {
		response.JSON(c, http.StatusOK, ws.School, nil)
	}
}

// UpdateSchool godoc
// @Summary Replace school settings
// @Tags School
// @Accept json
// @Produce json
// @Param payload body models.School true "School settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /school [put]
func (h *SchoolDataHandler) UpdateSchool(c *gin.Context) {
	var req models.School
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school payload"))
		return
	}
	school, err := h.service.UpdateSchool(c.Request.Context(), ownerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// GetTimeSlots godoc
// @Summary Period templates
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timeslots [get]
func (h *SchoolDataHandler) GetTimeSlots(c *gin.Context) {
	if ws, ok := h.workspace(c); ok {
		response.JSON(c, http.StatusOK, ws.TimeSlots, nil)
	}
}

// UpdateTimeSlots godoc
// @Summary Replace period templates
// @Tags School
// @Accept json
// @Produce json
// @Param payload body models.TimeSlotConfig true "Weekday and Saturday templates"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timeslots [put]
func (h *SchoolDataHandler) UpdateTimeSlots(c *gin.Context) {
	var req models.TimeSlotConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time slot payload"))
		return
	}
	cfg, err := h.service.UpdateTimeSlots(c.Request.Context(), ownerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// ListTeachers godoc
// @Summary List teachers
// @Tags School
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *SchoolDataHandler) ListTeachers(c *gin.Context) {
	if ws, ok := h.workspace(c); ok {
		teachers, pagination := paginate(c, ws.Teachers)
		response.JSON(c, http.StatusOK, teachers, pagination)
	}
}

// ReplaceTeachers godoc
// @Summary Replace the teacher list
// @Description Subject qualifications are re-derived from the teacher mappings
// @Tags School
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceTeachersRequest true "Teachers"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teachers [put]
func (h *SchoolDataHandler) ReplaceTeachers(c *gin.Context) {
	var req dto.ReplaceTeachersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teachers payload"))
		return
	}
	teachers, err := h.service.ReplaceTeachers(c.Request.Context(), ownerFromContext(c), req.Teachers)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// SetAbsence godoc
// @Summary Flag or clear a teacher's absence
// @Tags School
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.SetAbsenceRequest true "Absence flag"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/absence [patch]
func (h *SchoolDataHandler) SetAbsence(c *gin.Context) {
	var req dto.SetAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAbsent == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "isAbsent is required"))
		return
	}
	teacher, err := h.service.SetTeacherAbsence(c.Request.Context(), ownerFromContext(c), c.Param("id"), *req.IsAbsent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// ListClasses godoc
// @Summary List classes
// @Tags School
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *SchoolDataHandler) ListClasses(c *gin.Context) {
	if ws, ok := h.workspace(c); ok {
		classes, pagination := paginate(c, ws.Classes)
		response.JSON(c, http.StatusOK, classes, pagination)
	}
}

// ReplaceClasses godoc
// @Summary Replace the class list
// @Tags School
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceClassesRequest true "Classes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes [put]
func (h *SchoolDataHandler) ReplaceClasses(c *gin.Context) {
	var req dto.ReplaceClassesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid classes payload"))
		return
	}
	classes, err := h.service.ReplaceClasses(c.Request.Context(), ownerFromContext(c), req.Classes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// ListSubjects godoc
// @Summary List subjects
// @Tags School
// @Produce json
// @Param classId query string false "Only subjects of this class"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SchoolDataHandler) ListSubjects(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	subjects := ws.Subjects
	if classID := c.Query("classId"); classID != "" {
		subjects = make([]models.Subject, 0)
		for _, s := range ws.Subjects {
			if s.ClassID == classID {
				subjects = append(subjects, s)
			}
		}
	}
	page, pagination := paginate(c, subjects)
	response.JSON(c, http.StatusOK, page, pagination)
}

// ReplaceSubjects godoc
// @Summary Replace the subject list
// @Tags School
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceSubjectsRequest true "Subjects"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /subjects [put]
func (h *SchoolDataHandler) ReplaceSubjects(c *gin.Context) {
	var req dto.ReplaceSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subjects payload"))
		return
	}
	subjects, err := h.service.ReplaceSubjects(c.Request.Context(), ownerFromContext(c), req.Subjects)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// ImportLegacy godoc
// @Summary Import a browser storage export
// @Description Accepts the aceedx_* keys with JSON string or object values
// @Tags School
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /import/legacy [post]
func (h *SchoolDataHandler) ImportLegacy(c *gin.Context) {
	var req dto.LegacyImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}
	summary, err := h.service.ImportLegacy(c.Request.Context(), ownerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
