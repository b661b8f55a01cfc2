package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type stubSchoolStore struct {
	mu      sync.Mutex
	row     *models.SchoolSettingsRow
	upserts int
}

func (s *stubSchoolStore) Get(ctx context.Context, ownerID string) (*models.SchoolSettingsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.row == nil {
		return nil, sql.ErrNoRows
	}
	copied := *s.row
	return &copied, nil
}

func (s *stubSchoolStore) Upsert(ctx context.Context, row *models.SchoolSettingsRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.row = row
	s.upserts++
	return nil
}

type stubRecordStore struct {
	mu       sync.Mutex
	records  []models.WorkspaceRecord
	replaces int
	err      error
}

func (s *stubRecordStore) ListByOwner(ctx context.Context, ownerID string) ([]models.WorkspaceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WorkspaceRecord(nil), s.records...), s.err
}

func (s *stubRecordStore) ReplaceAll(ctx context.Context, ownerID string, records []models.WorkspaceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = records
	s.replaces++
	return nil
}

type stubTimeSlotStore struct {
	mu  sync.Mutex
	row *models.TimeSlotConfigRow
}

func (s *stubTimeSlotStore) Get(ctx context.Context, ownerID string) (*models.TimeSlotConfigRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.row == nil {
		return nil, sql.ErrNoRows
	}
	return s.row, nil
}

func (s *stubTimeSlotStore) Upsert(ctx context.Context, row *models.TimeSlotConfigRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.row = row
	return nil
}

type stubVersionStore struct {
	mu  sync.Mutex
	row *models.TimetableVersionRow
}

func (s *stubVersionStore) GetLatest(ctx context.Context, ownerID string) (*models.TimetableVersionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.row == nil {
		return nil, sql.ErrNoRows
	}
	return s.row, nil
}

func (s *stubVersionStore) Upsert(ctx context.Context, row *models.TimetableVersionRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.row = row
	return nil
}

type persistenceStubs struct {
	school    *stubSchoolStore
	teachers  *stubRecordStore
	classes   *stubRecordStore
	subjects  *stubRecordStore
	timeSlots *stubTimeSlotStore
	versions  *stubVersionStore
}

func newTestPersistence(t *testing.T, cfg PersistenceConfig) (*PersistenceService, persistenceStubs) {
	t.Helper()
	stubs := persistenceStubs{
		school:    &stubSchoolStore{},
		teachers:  &stubRecordStore{},
		classes:   &stubRecordStore{},
		subjects:  &stubRecordStore{},
		timeSlots: &stubTimeSlotStore{},
		versions:  &stubVersionStore{},
	}
	svc := NewPersistenceService(PersistenceRepositories{
		School:    stubs.school,
		Teachers:  stubs.teachers,
		Classes:   stubs.classes,
		Subjects:  stubs.subjects,
		TimeSlots: stubs.timeSlots,
		Versions:  stubs.versions,
	}, cfg, NewMetricsService(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		_ = svc.Stop(context.Background())
		cancel()
	})
	return svc, stubs
}

func TestPersistenceServiceLoadNeverSaved(t *testing.T) {
	svc, _ := newTestPersistence(t, PersistenceConfig{Workers: 1})

	ws, found, err := svc.Load(context.Background(), "school-1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, ws)
}

func TestPersistenceServiceSaveThenLoad(t *testing.T) {
	svc, _ := newTestPersistence(t, PersistenceConfig{Workers: 1})
	ctx := context.Background()

	original := DefaultWorkspace()
	original.Timetable = &models.TimetableVersion{
		ID:          "v1",
		GeneratedAt: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		Status:      models.TimetableStatusApproved,
		Score:       900,
		IsActive:    true,
		Entries:     []models.TimetableEntry{{ID: "e1", ClassID: "c1", Day: models.Monday, Period: 1, SubjectID: "c1_math", TeacherID: "t1"}},
		Errors:      []string{},
	}
	for _, section := range models.AllSections {
		require.NoError(t, svc.Save(ctx, "school-1", section, original))
	}

	loaded, found, err := svc.Load(ctx, "school-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, original.School, loaded.School)
	assert.Equal(t, original.TimeSlots, loaded.TimeSlots)
	assert.Equal(t, original.Teachers, loaded.Teachers)
	assert.Equal(t, original.Classes, loaded.Classes)
	assert.Equal(t, original.Subjects, loaded.Subjects)
	require.NotNil(t, loaded.Timetable)
	assert.Equal(t, "v1", loaded.Timetable.ID)
	assert.Equal(t, models.TimetableStatusApproved, loaded.Timetable.Status)
	assert.Equal(t, original.Timetable.Entries, loaded.Timetable.Entries)
}

func TestPersistenceServiceLoadDefaultsMissingTimeSlots(t *testing.T) {
	svc, stubs := newTestPersistence(t, PersistenceConfig{Workers: 1})
	require.NoError(t, svc.Save(context.Background(), "school-1", models.SectionSchool, DefaultWorkspace()))
	assert.Equal(t, 1, stubs.school.upserts)

	loaded, found, err := svc.Load(context.Background(), "school-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, DefaultWorkspace().TimeSlots, loaded.TimeSlots)
	assert.Empty(t, loaded.Teachers)
	assert.Nil(t, loaded.Timetable)
}

func TestPersistenceServiceLoadPropagatesErrors(t *testing.T) {
	svc, stubs := newTestPersistence(t, PersistenceConfig{Workers: 1})
	require.NoError(t, svc.Save(context.Background(), "school-1", models.SectionSchool, DefaultWorkspace()))
	stubs.classes.err = errors.New("boom")

	_, _, err := svc.Load(context.Background(), "school-1")
	require.Error(t, err)
}

func TestPersistenceServiceScheduleCoalesces(t *testing.T) {
	svc, stubs := newTestPersistence(t, PersistenceConfig{Workers: 2, Debounce: time.Hour, ListDebounce: time.Hour})

	first := DefaultWorkspace()
	second := DefaultWorkspace()
	second.Teachers = second.Teachers[:2]
	svc.Schedule("school-1", models.SectionTeachers, first)
	svc.Schedule("school-1", models.SectionTeachers, second)
	svc.Schedule("school-1", models.SectionSchool, second)

	assert.Zero(t, stubs.teachers.replaces)
	require.NoError(t, svc.Flush(context.Background()))

	assert.Equal(t, 1, stubs.teachers.replaces)
	assert.Len(t, stubs.teachers.records, 2)
	assert.Equal(t, 1, stubs.school.upserts)
}

func TestPersistenceServiceScheduleWithoutDebounceWrites(t *testing.T) {
	svc, stubs := newTestPersistence(t, PersistenceConfig{Workers: 1})

	svc.Schedule("school-1", models.SectionClasses, DefaultWorkspace())
	require.NoError(t, svc.Flush(context.Background()))
	assert.Equal(t, 1, stubs.classes.replaces)
	assert.Len(t, stubs.classes.records, 3)
}

func TestPersistenceServiceRejectsUnknownSection(t *testing.T) {
	svc, _ := newTestPersistence(t, PersistenceConfig{Workers: 1})
	err := svc.Save(context.Background(), "school-1", models.WorkspaceSection("students"), DefaultWorkspace())
	require.Error(t, err)
}
