package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// SubstitutionService covers periods of absent teachers in the active version.
type SubstitutionService struct {
	workspaces workspaceAccessor
	cache      timetableInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

func NewSubstitutionService(workspaces workspaceAccessor, cache timetableInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SubstitutionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubstitutionService{workspaces: workspaces, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

func parseDayParam(raw string) (models.Day, error) {
	day, err := models.ParseDay(raw)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("unknown day %q", raw))
	}
	return day, nil
}

// Suggest ranks substitutes for every period the teacher holds on the day.
func (s *SubstitutionService) Suggest(ctx context.Context, ownerID string, query dto.SuggestionQuery) (*dto.SuggestionsResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query")
	}
	day, err := parseDayParam(query.Day)
	if err != nil {
		return nil, err
	}
	ws, err := s.workspaces.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if ws.FindTeacher(query.TeacherID) < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	var entries []models.TimetableEntry
	if ws.Timetable != nil {
		entries = ws.Timetable.Entries
	}
	periods := scheduler.SuggestSubstitutes(entries, ws.Teachers, ws.Subjects, query.TeacherID, day)
	return &dto.SuggestionsResponse{
		TeacherID: query.TeacherID,
		Day:       day,
		Periods:   lo.Ternary(periods == nil, []models.PeriodSuggestions{}, periods),
	}, nil
}

// Apply hands one period of the absent teacher to the substitute.
func (s *SubstitutionService) Apply(ctx context.Context, ownerID string, req dto.ApplySubstitutionRequest) (*models.TimetableEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	day, err := parseDayParam(req.Day)
	if err != nil {
		return nil, err
	}

	var applied models.TimetableEntry
	_, err = s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		if ws.Timetable == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
		}
		if ws.Timetable.Locked() {
			return nil, appErrors.Clone(appErrors.ErrLocked, "timetable is locked; substitutions are not allowed")
		}
		if ws.FindTeacher(req.SubstituteTeacherID) < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "substitute teacher not found")
		}

		entries, idx := scheduler.ApplySubstitution(ws.Timetable.Entries, req.AbsentTeacherID, req.SubstituteTeacherID, day, req.Period)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no period held by the absent teacher at that time")
		}
		ws.Timetable.Entries = entries
		applied = entries[idx]
		return []models.WorkspaceSection{models.SectionTimetable}, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveSubstitutions("single", 1)
	s.invalidate(ctx, ownerID)
	s.logger.Info("substitution applied",
		zap.String("owner_id", ownerID),
		zap.String("absent_teacher_id", req.AbsentTeacherID),
		zap.String("substitute_teacher_id", req.SubstituteTeacherID),
		zap.Stringer("day", day),
		zap.Int("period", req.Period),
	)
	return &applied, nil
}

// Plan proposes cover for every absent teacher of a day and optionally
// applies it.
func (s *SubstitutionService) Plan(ctx context.Context, ownerID string, req dto.CoverPlanRequest) (*models.CoverPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	day, err := parseDayParam(req.Day)
	if err != nil {
		return nil, err
	}

	var plan models.CoverPlan
	build := func(ws *models.Workspace) error {
		if ws.Timetable == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
		}
		absent := req.AbsentTeacherIDs
		if len(absent) == 0 {
			absent = lo.FilterMap(ws.Teachers, func(t models.Teacher, _ int) (string, bool) { return t.ID, t.IsAbsent })
		}
		for _, id := range absent {
			if ws.FindTeacher(id) < 0 {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("teacher %s not found", id))
			}
		}
		planned, planErr := scheduler.PlanCover(ws.Timetable.Entries, ws.Teachers, ws.Subjects, absent, day)
		if planErr != nil {
			return appErrors.Wrap(planErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to plan cover")
		}
		plan = planned
		return nil
	}

	if !req.Apply {
		ws, err := s.workspaces.Snapshot(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if err := build(ws); err != nil {
			return nil, err
		}
		return &plan, nil
	}

	_, err = s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		if ws.Timetable.Locked() {
			return nil, appErrors.Clone(appErrors.ErrLocked, "timetable is locked; substitutions are not allowed")
		}
		if err := build(ws); err != nil {
			return nil, err
		}
		if len(plan.Assignments) == 0 {
			return nil, nil
		}
		ws.Timetable.Entries = scheduler.ApplyCoverPlan(ws.Timetable.Entries, plan)
		plan.Applied = true
		return []models.WorkspaceSection{models.SectionTimetable}, nil
	})
	if err != nil {
		return nil, err
	}

	if plan.Applied {
		s.metrics.ObserveSubstitutions("plan", len(plan.Assignments))
		s.invalidate(ctx, ownerID)
	}
	s.logger.Info("cover plan applied",
		zap.String("owner_id", ownerID),
		zap.Stringer("day", day),
		zap.Int("assignments", len(plan.Assignments)),
		zap.Int("uncovered", len(plan.Uncovered)),
	)
	return &plan, nil
}

func (s *SubstitutionService) invalidate(ctx context.Context, ownerID string) {
	if s.cache != nil {
		s.cache.InvalidateTimetable(ctx, ownerID)
	}
}
