package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type timetableService interface {
	Validate(ctx context.Context, ownerID string, req dto.ValidateTimetableRequest) (*dto.ValidationResponse, error)
	Generate(ctx context.Context, ownerID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Get(ctx context.Context, ownerID string) (*models.TimetableVersion, bool, error)
	ClassEntries(ctx context.Context, ownerID, classID string) (*dto.ClassTimetableResponse, error)
	Approve(ctx context.Context, ownerID string) (*models.TimetableVersion, error)
	Lock(ctx context.Context, ownerID string) (*models.TimetableVersion, error)
	Unlock(ctx context.Context, ownerID string) (*models.TimetableVersion, error)
	TeacherWorkload(ctx context.Context, ownerID, teacherID string) (*models.TeacherWorkload, error)
}

// TimetableHandler exposes generation and the version workflow.
type TimetableHandler struct {
	service timetableService
}

func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Validate godoc
// @Summary Validate timetable configuration
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.ValidateTimetableRequest false "Optional grade band"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/validate [post]
func (h *TimetableHandler) Validate(c *gin.Context) {
	var req dto.ValidateTimetableRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validate payload"))
			return
		}
	}
	res, err := h.service.Validate(c.Request.Context(), ownerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Generate godoc
// @Summary Generate a timetable version
// @Description Runs validation then fills every enabled class, optionally restricted to a grade band
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest false "Generation options"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
			return
		}
	}

	res, err := h.service.Generate(c.Request.Context(), ownerFromContext(c), req)
	if err != nil {
		var diag *service.DiagnosticsError
		if errors.As(err, &diag) {
			response.ErrorWithMeta(c, err, map[string]interface{}{"diagnostics": diag.Problems})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, res, nil)
}

// Get godoc
// @Summary Active timetable version
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	version, hit, err := h.service.Get(c.Request.Context(), ownerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, version, nil, middleware.ExtractMeta(c))
}

// ClassTimetable godoc
// @Summary Timetable of one class
// @Tags Timetable
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/classes/{classId} [get]
func (h *TimetableHandler) ClassTimetable(c *gin.Context) {
	res, err := h.service.ClassEntries(c.Request.Context(), ownerFromContext(c), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Approve godoc
// @Summary Approve the draft version
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetable/approve [post]
func (h *TimetableHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.Approve)
}

// Lock godoc
// @Summary Lock the approved version
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetable/lock [post]
func (h *TimetableHandler) Lock(c *gin.Context) {
	h.transition(c, h.service.Lock)
}

// Unlock godoc
// @Summary Unlock the version back to approved
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetable/unlock [post]
func (h *TimetableHandler) Unlock(c *gin.Context) {
	h.transition(c, h.service.Unlock)
}

func (h *TimetableHandler) transition(c *gin.Context, fn func(ctx context.Context, ownerID string) (*models.TimetableVersion, error)) {
	version, err := fn(c.Request.Context(), ownerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, version, nil)
}

// TeacherWorkload godoc
// @Summary Weekly workload of a teacher
// @Tags Timetable
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/workload [get]
func (h *TimetableHandler) TeacherWorkload(c *gin.Context) {
	res, err := h.service.TeacherWorkload(c.Request.Context(), ownerFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
