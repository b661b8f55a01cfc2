package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// DiagnosticsError carries the validation problems that blocked generation.
type DiagnosticsError struct {
	Problems []string
}

func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("%d validation problems, first: %s", len(e.Problems), e.Problems[0])
}

// TimetableConfig holds generation defaults.
type TimetableConfig struct {
	AllowOverfill bool
	CacheTTL      time.Duration
}

// TimetableService runs validation and generation against owner workspaces
// and drives the draft, approved, locked workflow.
type TimetableService struct {
	workspaces workspaceAccessor
	cache      timetableCache
	metrics    *MetricsService
	cfg        TimetableConfig
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

func NewTimetableService(workspaces workspaceAccessor, cache timetableCache, metrics *MetricsService, cfg TimetableConfig, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TimetableService{
		workspaces: workspaces,
		cache:      cache,
		metrics:    metrics,
		cfg:        cfg,
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func generateInput(ws *models.Workspace) scheduler.GenerateInput {
	in := scheduler.GenerateInput{
		Classes:       ws.Classes,
		Subjects:      ws.Subjects,
		Teachers:      ws.Teachers,
		WeekdaySlots:  ws.TimeSlots.WeekdaySlots,
		SaturdaySlots: ws.TimeSlots.SaturdaySlots,
	}
	if ws.Timetable != nil {
		in.Previous = ws.Timetable.Entries
	}
	return in
}

func gradeRange(from, to string) *scheduler.GradeRange {
	if from == "" && to == "" {
		return nil
	}
	return &scheduler.GradeRange{From: from, To: to}
}

// Validate lists configuration problems that would hurt generation of the
// requested grade band, or of every enabled class when no band is given.
func (s *TimetableService) Validate(ctx context.Context, ownerID string, req dto.ValidateTimetableRequest) (*dto.ValidationResponse, error) {
	ws, err := s.workspaces.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	in := generateInput(ws)
	in.GradeRange = gradeRange(req.GradeFrom, req.GradeTo)
	problems := scheduler.Validate(in)
	s.metrics.ObserveValidation(len(problems))
	return &dto.ValidationResponse{Valid: len(problems) == 0, Errors: lo.Ternary(problems == nil, []string{}, problems)}, nil
}

// Generate builds a new draft version and makes it the active one.
func (s *TimetableService) Generate(ctx context.Context, ownerID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	var (
		result   scheduler.Result
		warnings []string
		elapsed  time.Duration
	)
	ws, err := s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		if ws.Timetable.Locked() {
			return nil, appErrors.Clone(appErrors.ErrLocked, "timetable is locked; unlock it before regenerating")
		}

		in := generateInput(ws)
		in.GradeRange = gradeRange(req.GradeFrom, req.GradeTo)
		problems := scheduler.Validate(in)
		if len(problems) > 0 && !req.Force {
			return nil, appErrors.Wrap(&DiagnosticsError{Problems: problems}, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "timetable configuration is invalid")
		}
		warnings = problems

		in.AllowOverfill = s.cfg.AllowOverfill
		if req.AllowOverfill != nil {
			in.AllowOverfill = *req.AllowOverfill
		}
		in.GeneratedAt = s.now()

		start := time.Now()
		result = scheduler.Generate(in)
		elapsed = time.Since(start)

		ws.Timetable = &models.TimetableVersion{
			ID:          uuid.NewString(),
			GeneratedAt: in.GeneratedAt,
			Score:       result.Score,
			Status:      models.TimetableStatusDraft,
			IsActive:    true,
			Entries:     withStatus(result.Entries, models.TimetableStatusDraft),
			Errors:      lo.Ternary(result.Errors == nil, []string{}, result.Errors),
		}
		return []models.WorkspaceSection{models.SectionTimetable}, nil
	})
	if err != nil {
		return nil, err
	}

	fill := scheduler.FillRatio(result.FilledSlots, result.TotalSlots)
	s.metrics.ObserveGeneration(elapsed, result.Score, fill, len(result.Errors))
	s.InvalidateTimetable(ctx, ownerID)
	s.logger.Info("timetable generated",
		zap.String("owner_id", ownerID),
		zap.String("version_id", ws.Timetable.ID),
		zap.Int("score", result.Score),
		zap.Int("filled", result.FilledSlots),
		zap.Int("total", result.TotalSlots),
		zap.Int("diagnostics", len(result.Errors)),
		zap.Duration("duration", elapsed),
	)

	return &dto.GenerateTimetableResponse{
		Version:     ws.Timetable,
		FilledSlots: result.FilledSlots,
		TotalSlots:  result.TotalSlots,
		FillRatio:   fill,
		Warnings:    warnings,
	}, nil
}

// Get returns the active version. The second return value reports a cache hit.
func (s *TimetableService) Get(ctx context.Context, ownerID string) (*models.TimetableVersion, bool, error) {
	key := repository.TimetableCacheKey(ownerID)
	if s.cache != nil {
		var cached models.TimetableVersion
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	ws, err := s.workspaces.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	if ws.Timetable == nil {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, ws.Timetable, s.cfg.CacheTTL)
	}
	return ws.Timetable, false, nil
}

// ClassEntries returns one class's entries ordered by day then period.
func (s *TimetableService) ClassEntries(ctx context.Context, ownerID, classID string) (*dto.ClassTimetableResponse, error) {
	ws, err := s.workspaces.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	idx := ws.FindClass(classID)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if ws.Timetable == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
	}
	return &dto.ClassTimetableResponse{
		ClassID:   classID,
		ClassName: ws.Classes[idx].Label(),
		Status:    ws.Timetable.Status,
		Entries:   classEntries(ws.Timetable.Entries, classID),
	}, nil
}

func classEntries(entries []models.TimetableEntry, classID string) []models.TimetableEntry {
	out := lo.Filter(entries, func(e models.TimetableEntry, _ int) bool { return e.ClassID == classID })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Period < out[j].Period
	})
	return out
}

// Approve moves a draft to approved.
func (s *TimetableService) Approve(ctx context.Context, ownerID string) (*models.TimetableVersion, error) {
	return s.transition(ctx, ownerID, models.TimetableStatusApproved, models.TimetableStatusDraft, models.TimetableStatusApproved)
}

// Lock freezes an approved version.
func (s *TimetableService) Lock(ctx context.Context, ownerID string) (*models.TimetableVersion, error) {
	return s.transition(ctx, ownerID, models.TimetableStatusLocked, models.TimetableStatusApproved, models.TimetableStatusLocked)
}

// Unlock returns a locked version to approved.
func (s *TimetableService) Unlock(ctx context.Context, ownerID string) (*models.TimetableVersion, error) {
	return s.transition(ctx, ownerID, models.TimetableStatusApproved, models.TimetableStatusLocked, models.TimetableStatusApproved)
}

// transition moves the active version to target when its status is one of from.
// Repeating a transition is a no-op.
func (s *TimetableService) transition(ctx context.Context, ownerID string, target models.TimetableStatus, from ...models.TimetableStatus) (*models.TimetableVersion, error) {
	ws, err := s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		if ws.Timetable == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
		}
		current := ws.Timetable.Status
		if current == target {
			return nil, nil
		}
		if !lo.Contains(from, current) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot move timetable from %s to %s", current, target))
		}
		ws.Timetable.Status = target
		ws.Timetable.Entries = withStatus(ws.Timetable.Entries, target)
		return []models.WorkspaceSection{models.SectionTimetable}, nil
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateTimetable(ctx, ownerID)
	s.logger.Info("timetable status changed", zap.String("owner_id", ownerID), zap.String("status", string(ws.Timetable.Status)))
	return ws.Timetable, nil
}

// TeacherWorkload summarises one teacher's periods in the active version.
func (s *TimetableService) TeacherWorkload(ctx context.Context, ownerID, teacherID string) (*models.TeacherWorkload, error) {
	ws, err := s.workspaces.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if ws.FindTeacher(teacherID) < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	var entries []models.TimetableEntry
	if ws.Timetable != nil {
		entries = ws.Timetable.Entries
	}
	workload := scheduler.TeacherWorkload(teacherID, entries, ws.Classes, ws.Subjects)
	return &workload, nil
}

// InvalidateTimetable drops the cached active version of ownerID.
func (s *TimetableService) InvalidateTimetable(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, repository.TimetableCacheKey(ownerID))
}

func withStatus(entries []models.TimetableEntry, status models.TimetableStatus) []models.TimetableEntry {
	out := make([]models.TimetableEntry, len(entries))
	for i, e := range entries {
		e.Status = status
		out[i] = e
	}
	return out
}
