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

type substitutionService interface {
	Suggest(ctx context.Context, ownerID string, query dto.SuggestionQuery) (*dto.SuggestionsResponse, error)
	Apply(ctx context.Context, ownerID string, req dto.ApplySubstitutionRequest) (*models.TimetableEntry, error)
	Plan(ctx context.Context, ownerID string, req dto.CoverPlanRequest) (*models.CoverPlan, error)
}

// SubstitutionHandler serves substitute suggestions and cover plans.
type SubstitutionHandler struct {
	service substitutionService
}

func NewSubstitutionHandler(svc substitutionService) *SubstitutionHandler {
	return &SubstitutionHandler{service: svc}
}

// Suggestions godoc
// @Summary Rank substitutes for an absent teacher
// @Tags Substitutions
// @Produce json
// @Param teacherId query string true "Absent teacher ID"
// @Param day query string true "Day name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /substitutions/suggestions [get]
func (h *SubstitutionHandler) Suggestions(c *gin.Context) {
	var query dto.SuggestionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	res, err := h.service.Suggest(c.Request.Context(), ownerFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Apply godoc
// @Summary Apply one substitution
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param payload body dto.ApplySubstitutionRequest true "Substitution"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /substitutions [post]
func (h *SubstitutionHandler) Apply(c *gin.Context) {
	var req dto.ApplySubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid substitution payload"))
		return
	}
	entry, err := h.service.Apply(c.Request.Context(), ownerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Plan godoc
// @Summary Plan cover for a day
// @Description Matches every uncovered period of the absent teachers to a free substitute
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param payload body dto.CoverPlanRequest true "Cover plan request"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /substitutions/plan [post]
func (h *SubstitutionHandler) Plan(c *gin.Context) {
	var req dto.CoverPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cover plan payload"))
		return
	}
	plan, err := h.service.Plan(c.Request.Context(), ownerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}
