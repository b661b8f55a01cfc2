package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type workspaceAccessor interface {
	Snapshot(ctx context.Context, ownerID string) (*models.Workspace, error)
	Update(ctx context.Context, ownerID string, fn WorkspaceMutation) (*models.Workspace, error)
}

// timetableInvalidator drops cached copies of an owner's timetable.
type timetableInvalidator interface {
	InvalidateTimetable(ctx context.Context, ownerID string)
}

// SchoolDataService edits the school configuration of a workspace: settings,
// period templates and the teacher, class and subject lists.
type SchoolDataService struct {
	workspaces workspaceAccessor
	cache      timetableInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

func NewSchoolDataService(workspaces workspaceAccessor, cache timetableInvalidator, validate *validator.Validate, logger *zap.Logger) *SchoolDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SchoolDataService{workspaces: workspaces, cache: cache, validator: validate, logger: logger}
}

func (s *SchoolDataService) Workspace(ctx context.Context, ownerID string) (*models.Workspace, error) {
	return s.workspaces.Snapshot(ctx, ownerID)
}

func (s *SchoolDataService) UpdateSchool(ctx context.Context, ownerID string, school models.School) (*models.School, error) {
	if err := s.validator.Struct(school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school settings")
	}
	if school.BoardType == "" {
		school.BoardType = models.BoardCBSE
	}
	ws, err := s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		ws.School = school
		return []models.WorkspaceSection{models.SectionSchool}, nil
	})
	if err != nil {
		return nil, err
	}
	return &ws.School, nil
}

func (s *SchoolDataService) UpdateTimeSlots(ctx context.Context, ownerID string, cfg models.TimeSlotConfig) (*models.TimeSlotConfig, error) {
	if err := s.validator.Struct(cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slots")
	}
	if err := checkTemplate("weekday", cfg.WeekdaySlots); err != nil {
		return nil, err
	}
	if err := checkTemplate("saturday", cfg.SaturdaySlots); err != nil {
		return nil, err
	}
	ws, err := s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		ws.TimeSlots = cfg
		return []models.WorkspaceSection{models.SectionTimeSlots}, nil
	})
	if err != nil {
		return nil, err
	}
	return &ws.TimeSlots, nil
}

// checkTemplate rejects templates whose teaching periods repeat a number.
func checkTemplate(name string, slots []models.TimeSlot) error {
	seen := make(map[int]bool)
	for _, slot := range models.TeachingSlots(slots) {
		if seen[slot.PeriodNumber] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s template repeats period %d", name, slot.PeriodNumber))
		}
		seen[slot.PeriodNumber] = true
	}
	return nil
}

// ReplaceTeachers swaps the teacher list and re-derives every subject's
// qualified teachers from the new mappings.
func (s *SchoolDataService) ReplaceTeachers(ctx context.Context, ownerID string, teachers []models.Teacher) ([]models.Teacher, error) {
	if err := s.validator.Struct(dto.ReplaceTeachersRequest{Teachers: teachers}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teachers")
	}
	if err := uniqueIDs("teacher", teachers, func(t models.Teacher) string { return t.ID }); err != nil {
		return nil, err
	}
	for i := range teachers {
		if err := normaliseTeacher(&teachers[i]); err != nil {
			return nil, err
		}
	}

	ws, err := s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		ws.Teachers = teachers
		ws.Subjects = scheduler.SyncQualifications(ws.Teachers, ws.Subjects)
		return []models.WorkspaceSection{models.SectionTeachers, models.SectionSubjects}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("teachers replaced", zap.String("owner_id", ownerID), zap.Int("count", len(ws.Teachers)))
	return ws.Teachers, nil
}

func (s *SchoolDataService) ReplaceClasses(ctx context.Context, ownerID string, classes []models.Class) ([]models.Class, error) {
	if err := s.validator.Struct(dto.ReplaceClassesRequest{Classes: classes}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classes")
	}
	if err := uniqueIDs("class", classes, func(c models.Class) string { return c.ID }); err != nil {
		return nil, err
	}
	ws, err := s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		ws.Classes = classes
		return []models.WorkspaceSection{models.SectionClasses}, nil
	})
	if err != nil {
		return nil, err
	}
	return ws.Classes, nil
}

// ReplaceSubjects swaps the subject list. Every subject must belong to a
// known class.
func (s *SchoolDataService) ReplaceSubjects(ctx context.Context, ownerID string, subjects []models.Subject) ([]models.Subject, error) {
	if err := s.validator.Struct(dto.ReplaceSubjectsRequest{Subjects: subjects}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subjects")
	}
	if err := uniqueIDs("subject", subjects, func(sub models.Subject) string { return sub.ID }); err != nil {
		return nil, err
	}
	for i := range subjects {
		if subjects[i].Priority == "" {
			subjects[i].Priority = models.PriorityCore
		}
		if subjects[i].QualifiedTeacherIDs == nil {
			subjects[i].QualifiedTeacherIDs = []string{}
		}
	}

	ws, err := s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		for _, subject := range subjects {
			if ws.FindClass(subject.ClassID) < 0 {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s references unknown class %s", subject.ID, subject.ClassID))
			}
		}
		ws.Subjects = subjects
		return []models.WorkspaceSection{models.SectionSubjects}, nil
	})
	if err != nil {
		return nil, err
	}
	return ws.Subjects, nil
}

// SetTeacherAbsence flags or clears a teacher's absence.
func (s *SchoolDataService) SetTeacherAbsence(ctx context.Context, ownerID, teacherID string, absent bool) (*models.Teacher, error) {
	var updated models.Teacher
	_, err := s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		idx := ws.FindTeacher(teacherID)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		ws.Teachers[idx].IsAbsent = absent
		updated = ws.Teachers[idx]
		return []models.WorkspaceSection{models.SectionTeachers}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ImportLegacy replaces the sections present in a browser storage dump.
func (s *SchoolDataService) ImportLegacy(ctx context.Context, ownerID string, req dto.LegacyImportRequest) (*dto.ImportSummary, error) {
	imported, err := DecodeLegacyWorkspace(req)
	if err != nil {
		return nil, err
	}

	summary := &dto.ImportSummary{}
	_, err = s.workspaces.Update(ctx, ownerID, func(ws *models.Workspace) ([]models.WorkspaceSection, error) {
		if imported.School != nil {
			ws.School = *imported.School
			summary.Sections = append(summary.Sections, models.SectionSchool)
		}
		if imported.TimeSlots != nil {
			ws.TimeSlots = *imported.TimeSlots
			summary.Sections = append(summary.Sections, models.SectionTimeSlots)
		}
		if imported.Teachers != nil {
			ws.Teachers = imported.Teachers
			summary.Sections = append(summary.Sections, models.SectionTeachers)
		}
		if imported.Classes != nil {
			ws.Classes = imported.Classes
			summary.Sections = append(summary.Sections, models.SectionClasses)
		}
		if imported.Subjects != nil {
			ws.Subjects = imported.Subjects
			summary.Sections = append(summary.Sections, models.SectionSubjects)
		}
		if imported.Teachers != nil && lo.SomeBy(ws.Teachers, func(t models.Teacher) bool { return len(t.SubjectClassMap) > 0 }) {
			ws.Subjects = scheduler.SyncQualifications(ws.Teachers, ws.Subjects)
			if !lo.Contains(summary.Sections, models.SectionSubjects) {
				summary.Sections = append(summary.Sections, models.SectionSubjects)
			}
		}
		if imported.Timetable != nil {
			ws.Timetable = imported.Timetable
			summary.Sections = append(summary.Sections, models.SectionTimetable)
			summary.Timetable = true
		}
		if len(summary.Sections) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "import contains no known keys")
		}
		summary.Teachers, summary.Classes, summary.Subjects = len(ws.Teachers), len(ws.Classes), len(ws.Subjects)
		return summary.Sections, nil
	})
	if err != nil {
		return nil, err
	}
	if summary.Timetable && s.cache != nil {
		s.cache.InvalidateTimetable(ctx, ownerID)
	}
	s.logger.Info("legacy workspace imported", zap.String("owner_id", ownerID), zap.Any("sections", summary.Sections))
	return summary, nil
}

func uniqueIDs[T any](kind string, items []T, id func(T) string) error {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := id(item)
		if seen[key] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate %s id %s", kind, key))
		}
		seen[key] = true
	}
	return nil
}

// normaliseTeacher fills defaults and drops duplicate or invalid days.
func normaliseTeacher(t *models.Teacher) error {
	if t.Role == "" {
		t.Role = models.RoleSubjectTeacher
	}
	for _, day := range t.AvailableDays {
		if !day.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("teacher %s has invalid available day %d", t.ID, day))
		}
	}
	t.AvailableDays = lo.Uniq(t.AvailableDays)
	if t.SubjectsCanTeach == nil {
		t.SubjectsCanTeach = []string{}
	}
	if t.ClassesHandled == nil {
		t.ClassesHandled = []string{}
	}
	if t.SubjectClassMap == nil {
		t.SubjectClassMap = []models.SubjectClassMapping{}
	}
	for i := range t.SubjectClassMap {
		t.SubjectClassMap[i].Subject = strings.TrimSpace(t.SubjectClassMap[i].Subject)
	}
	return nil
}
