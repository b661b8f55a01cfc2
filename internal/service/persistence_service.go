package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

type schoolSettingsStore interface {
	Get(ctx context.Context, ownerID string) (*models.SchoolSettingsRow, error)
	Upsert(ctx context.Context, row *models.SchoolSettingsRow) error
}

type recordStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.WorkspaceRecord, error)
	ReplaceAll(ctx context.Context, ownerID string, records []models.WorkspaceRecord) error
}

type timeSlotConfigStore interface {
	Get(ctx context.Context, ownerID string) (*models.TimeSlotConfigRow, error)
	Upsert(ctx context.Context, row *models.TimeSlotConfigRow) error
}

type timetableVersionStore interface {
	GetLatest(ctx context.Context, ownerID string) (*models.TimetableVersionRow, error)
	Upsert(ctx context.Context, row *models.TimetableVersionRow) error
}

// PersistenceRepositories groups the stores behind a workspace.
type PersistenceRepositories struct {
	School    schoolSettingsStore
	Teachers  recordStore
	Classes   recordStore
	Subjects  recordStore
	TimeSlots timeSlotConfigStore
	Versions  timetableVersionStore
}

// PersistenceConfig tunes write coalescing.
type PersistenceConfig struct {
	// Debounce applies to school settings, time slots and the timetable.
	Debounce time.Duration
	// ListDebounce applies to teachers, classes and subjects.
	ListDebounce time.Duration
	Workers      int
	Retries      int
	RetryDelay   time.Duration
}

type saveRequest struct {
	ownerID   string
	section   models.WorkspaceSection
	workspace *models.Workspace
}

// PersistenceService loads workspaces from the database and writes sections
// back. Scheduled writes with the same owner and section coalesce: only the
// latest snapshot inside the debounce window is written.
type PersistenceService struct {
	repos     PersistenceRepositories
	cfg       PersistenceConfig
	metrics   *MetricsService
	logger    *zap.Logger
	queue     *jobs.Queue
	debouncer *jobs.Debouncer
}

func NewPersistenceService(repos PersistenceRepositories, cfg PersistenceConfig, metrics *MetricsService, logger *zap.Logger) *PersistenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PersistenceService{repos: repos, cfg: cfg, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("workspace-persistence", s.handleJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	s.debouncer = jobs.NewDebouncer(func(job jobs.Job) {
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Error("enqueue workspace save", zap.String("job_id", job.ID), zap.Error(err))
		}
	})
	return s
}

func (s *PersistenceService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Flush writes every pending section now and waits for the queue to drain.
func (s *PersistenceService) Flush(ctx context.Context) error {
	flushed := s.debouncer.Flush()
	if err := s.queue.Drain(ctx); err != nil {
		return err
	}
	if flushed > 0 {
		s.logger.Info("workspace saves flushed", zap.Int("sections", flushed))
	}
	return nil
}

// Stop flushes pending writes within ctx and stops the workers.
func (s *PersistenceService) Stop(ctx context.Context) error {
	err := s.Flush(ctx)
	s.debouncer.Stop()
	s.queue.Stop()
	return err
}

// Schedule queues a write of section from ws. ws must not be mutated afterwards.
func (s *PersistenceService) Schedule(ownerID string, section models.WorkspaceSection, ws *models.Workspace) {
	delay := s.cfg.Debounce
	switch section {
	case models.SectionTeachers, models.SectionClasses, models.SectionSubjects:
		delay = s.cfg.ListDebounce
	}
	s.debouncer.Schedule(jobs.Job{
		ID:      ownerID + "/" + string(section),
		Type:    string(section),
		Payload: saveRequest{ownerID: ownerID, section: section, workspace: ws},
	}, delay)
}

func (s *PersistenceService) handleJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(saveRequest)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	return s.Save(ctx, req.ownerID, req.section, req.workspace)
}

// Save writes one section of ws synchronously.
func (s *PersistenceService) Save(ctx context.Context, ownerID string, section models.WorkspaceSection, ws *models.Workspace) error {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("save_"+string(section), time.Since(start)) }()

	switch section {
	case models.SectionSchool:
		row, err := schoolRow(ownerID, ws.School)
		if err != nil {
			return err
		}
		return s.repos.School.Upsert(ctx, row)
	case models.SectionTimeSlots:
		row, err := timeSlotRow(ownerID, ws.TimeSlots)
		if err != nil {
			return err
		}
		return s.repos.TimeSlots.Upsert(ctx, row)
	case models.SectionTeachers:
		return saveRecords(ctx, s.repos.Teachers, ownerID, ws.Teachers, func(t models.Teacher) string { return t.ID })
	case models.SectionClasses:
		return saveRecords(ctx, s.repos.Classes, ownerID, ws.Classes, func(c models.Class) string { return c.ID })
	case models.SectionSubjects:
		return saveRecords(ctx, s.repos.Subjects, ownerID, ws.Subjects, func(sub models.Subject) string { return sub.ID })
	case models.SectionTimetable:
		if ws.Timetable == nil {
			return nil
		}
		row, err := versionRow(ownerID, ws.Timetable)
		if err != nil {
			return err
		}
		return s.repos.Versions.Upsert(ctx, row)
	default:
		return fmt.Errorf("unknown workspace section %q", section)
	}
}

// Load reads every section of the owner's workspace. found is false when the
// owner has no school settings row, which marks a workspace never saved.
func (s *PersistenceService) Load(ctx context.Context, ownerID string) (*models.Workspace, bool, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("load_workspace", time.Since(start)) }()

	settings, err := s.repos.School.Get(ctx, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load school settings: %w", err)
	}

	ws := &models.Workspace{
		School: models.School{
			SchoolName:     settings.SchoolName,
			BoardType:      models.BoardType(settings.BoardType),
			AcademicYear:   settings.AcademicYear,
			CustomSubjects: []string(settings.CustomSubjects),
		},
	}
	if len(settings.DivisionsPerGrade) > 0 {
		if err := settings.DivisionsPerGrade.Unmarshal(&ws.School.DivisionsPerGrade); err != nil {
			return nil, false, fmt.Errorf("decode divisions per grade: %w", err)
		}
	}

	slots, err := s.repos.TimeSlots.Get(ctx, ownerID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		ws.TimeSlots = DefaultWorkspace().TimeSlots
	case err != nil:
		return nil, false, fmt.Errorf("load time slots: %w", err)
	default:
		ws.TimeSlots.SaturdayHalfDay = slots.SaturdayHalfDay
		if err := slots.WeekdaySlots.Unmarshal(&ws.TimeSlots.WeekdaySlots); err != nil {
			return nil, false, fmt.Errorf("decode weekday slots: %w", err)
		}
		if err := slots.SaturdaySlots.Unmarshal(&ws.TimeSlots.SaturdaySlots); err != nil {
			return nil, false, fmt.Errorf("decode saturday slots: %w", err)
		}
	}

	if ws.Teachers, err = loadRecords[models.Teacher](ctx, s.repos.Teachers, ownerID); err != nil {
		return nil, false, err
	}
	if ws.Classes, err = loadRecords[models.Class](ctx, s.repos.Classes, ownerID); err != nil {
		return nil, false, err
	}
	if ws.Subjects, err = loadRecords[models.Subject](ctx, s.repos.Subjects, ownerID); err != nil {
		return nil, false, err
	}

	latest, err := s.repos.Versions.GetLatest(ctx, ownerID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, false, fmt.Errorf("load timetable version: %w", err)
	default:
		var version models.TimetableVersion
		if err := latest.VersionData.Unmarshal(&version); err != nil {
			return nil, false, fmt.Errorf("decode timetable version: %w", err)
		}
		ws.Timetable = &version
	}

	return ws, true, nil
}

func loadRecords[T any](ctx context.Context, store recordStore, ownerID string) ([]T, error) {
	records, err := store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var item T
		if err := rec.Data.Unmarshal(&item); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", rec.RecordID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func saveRecords[T any](ctx context.Context, store recordStore, ownerID string, items []T, id func(T) string) error {
	records := make([]models.WorkspaceRecord, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", id(item), err)
		}
		records = append(records, models.WorkspaceRecord{OwnerID: ownerID, RecordID: id(item), Data: types.JSONText(data)})
	}
	return store.ReplaceAll(ctx, ownerID, records)
}

func schoolRow(ownerID string, school models.School) (*models.SchoolSettingsRow, error) {
	divisions := school.DivisionsPerGrade
	if divisions == nil {
		divisions = map[string][]string{}
	}
	raw, err := json.Marshal(divisions)
	if err != nil {
		return nil, fmt.Errorf("encode divisions per grade: %w", err)
	}
	custom := school.CustomSubjects
	if custom == nil {
		custom = []string{}
	}
	board := school.BoardType
	if board == "" {
		board = models.BoardCBSE
	}
	return &models.SchoolSettingsRow{
		OwnerID:           ownerID,
		SchoolName:        school.SchoolName,
		BoardType:         string(board),
		AcademicYear:      school.AcademicYear,
		DivisionsPerGrade: types.JSONText(raw),
		CustomSubjects:    pq.StringArray(custom),
	}, nil
}

func timeSlotRow(ownerID string, cfg models.TimeSlotConfig) (*models.TimeSlotConfigRow, error) {
	weekday, err := json.Marshal(nonNilSlots(cfg.WeekdaySlots))
	if err != nil {
		return nil, fmt.Errorf("encode weekday slots: %w", err)
	}
	saturday, err := json.Marshal(nonNilSlots(cfg.SaturdaySlots))
	if err != nil {
		return nil, fmt.Errorf("encode saturday slots: %w", err)
	}
	return &models.TimeSlotConfigRow{
		OwnerID:         ownerID,
		WeekdaySlots:    types.JSONText(weekday),
		SaturdaySlots:   types.JSONText(saturday),
		SaturdayHalfDay: cfg.SaturdayHalfDay,
	}, nil
}

func versionRow(ownerID string, version *models.TimetableVersion) (*models.TimetableVersionRow, error) {
	raw, err := json.Marshal(version)
	if err != nil {
		return nil, fmt.Errorf("encode timetable version: %w", err)
	}
	return &models.TimetableVersionRow{
		OwnerID:     ownerID,
		VersionID:   version.ID,
		Status:      string(version.Status),
		Score:       version.Score,
		VersionData: types.JSONText(raw),
		GeneratedAt: version.GeneratedAt,
	}, nil
}

func nonNilSlots(slots []models.TimeSlot) []models.TimeSlot {
	if slots == nil {
		return []models.TimeSlot{}
	}
	return slots
}
