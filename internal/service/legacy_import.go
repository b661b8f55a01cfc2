package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// LegacyWorkspace holds the sections found in a browser storage dump. Nil
// fields were absent from the dump.
type LegacyWorkspace struct {
	School    *models.School
	TimeSlots *models.TimeSlotConfig
	Teachers  []models.Teacher
	Classes   []models.Class
	Subjects  []models.Subject
	Timetable *models.TimetableVersion
}

// DecodeLegacyWorkspace converts the camelCase browser export into workspace
// sections. Values may arrive as JSON strings, exactly as browser storage
// holds them, or as decoded objects.
func DecodeLegacyWorkspace(req dto.LegacyImportRequest) (*LegacyWorkspace, error) {
	out := &LegacyWorkspace{}

	if raw, ok := req[dto.LegacyKeySchool]; ok {
		var school dto.LegacySchool
		if err := decodeLegacyValue(dto.LegacyKeySchool, raw, &school); err != nil {
			return nil, err
		}
		converted := models.School{
			SchoolName:        school.SchoolName,
			BoardType:         models.BoardType(strings.ToUpper(school.BoardType)),
			AcademicYear:      school.AcademicYear,
			DivisionsPerGrade: school.DivisionsPerGrade,
			CustomSubjects:    school.CustomSubjects,
		}
		if converted.BoardType == "" {
			converted.BoardType = models.BoardCBSE
		}
		out.School = &converted
	}

	if raw, ok := req[dto.LegacyKeyTimeSlots]; ok {
		var slots dto.LegacyTimeSlots
		if err := decodeLegacyValue(dto.LegacyKeyTimeSlots, raw, &slots); err != nil {
			return nil, err
		}
		cfg := models.TimeSlotConfig{
			WeekdaySlots:    convertLegacySlots(slots.WeekdaySlots),
			SaturdaySlots:   convertLegacySlots(slots.SaturdaySlots),
			SaturdayHalfDay: true,
		}
		if slots.IsSaturdayHalfDay != nil {
			cfg.SaturdayHalfDay = *slots.IsSaturdayHalfDay
		}
		out.TimeSlots = &cfg
	}

	if raw, ok := req[dto.LegacyKeyTeachers]; ok {
		var teachers []dto.LegacyTeacher
		if err := decodeLegacyValue(dto.LegacyKeyTeachers, raw, &teachers); err != nil {
			return nil, err
		}
		out.Teachers = make([]models.Teacher, 0, len(teachers))
		for _, t := range teachers {
			teacher, err := convertLegacyTeacher(t)
			if err != nil {
				return nil, err
			}
			out.Teachers = append(out.Teachers, teacher)
		}
	}

	if raw, ok := req[dto.LegacyKeyClasses]; ok {
		var classes []dto.LegacyClass
		if err := decodeLegacyValue(dto.LegacyKeyClasses, raw, &classes); err != nil {
			return nil, err
		}
		out.Classes = lo.Map(classes, func(c dto.LegacyClass, _ int) models.Class {
			return models.Class{
				ID:             c.ClassID,
				Grade:          c.Grade,
				Section:        c.Section,
				ClassTeacherID: c.ClassTeacherID,
				Enabled:        c.IsEnabled == nil || *c.IsEnabled,
			}
		})
	}

	if raw, ok := req[dto.LegacyKeySubjects]; ok {
		var subjects []dto.LegacySubject
		if err := decodeLegacyValue(dto.LegacyKeySubjects, raw, &subjects); err != nil {
			return nil, err
		}
		out.Subjects = lo.Map(subjects, func(s dto.LegacySubject, _ int) models.Subject {
			priority := models.SubjectPriority(s.Priority)
			if priority.Rank() > models.PriorityActivity.Rank() {
				priority = models.PriorityCore
			}
			qualified := s.QualifiedTeacherIDs
			if qualified == nil {
				qualified = []string{}
			}
			return models.Subject{
				ID:                  s.SubjectID,
				ClassID:             s.ClassID,
				Name:                s.SubjectName,
				PeriodsPerWeek:      s.PeriodsPerWeek,
				MaxPerDay:           s.MaxPerDay,
				Priority:            priority,
				IsLab:               s.IsLab,
				NeedsPlayground:     s.NeedsPlayground,
				AllowDoublePeriod:   s.AllowDoublePeriod,
				QualifiedTeacherIDs: qualified,
			}
		})
	}

	if raw, ok := req[dto.LegacyKeyTimetable]; ok && raw != nil {
		var timetable dto.LegacyTimetable
		if err := decodeLegacyValue(dto.LegacyKeyTimetable, raw, &timetable); err != nil {
			return nil, err
		}
		version, err := convertLegacyTimetable(timetable)
		if err != nil {
			return nil, err
		}
		out.Timetable = version
	}

	return out, nil
}

func decodeLegacyValue(key string, raw interface{}, target interface{}) error {
	if text, ok := raw.(string); ok {
		var decoded interface{}
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("%s is not valid JSON", key))
		}
		raw = decoded
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("%s has an unexpected shape", key))
	}
	return nil
}

func convertLegacySlots(slots []dto.LegacyTimeSlot) []models.TimeSlot {
	out := make([]models.TimeSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, models.TimeSlot{
			PeriodNumber: s.PeriodNumber,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			IsBreak:      s.IsBreak,
			Label:        s.Label,
		})
	}
	return out
}

func convertLegacyTeacher(t dto.LegacyTeacher) (models.Teacher, error) {
	days := make([]models.Day, 0, len(t.AvailableDays))
	for _, name := range t.AvailableDays {
		day, err := models.ParseDay(name)
		if err != nil {
			return models.Teacher{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("teacher %s has an invalid available day", t.TeacherID))
		}
		days = append(days, day)
	}

	role := models.TeacherRole(t.TeacherRole)
	if role != models.RoleClassTeacher {
		role = models.RoleSubjectTeacher
	}

	teacher := models.Teacher{
		ID:                t.TeacherID,
		Name:              t.Name,
		Role:              role,
		SubjectsCanTeach:  lo.Ternary(t.SubjectsCanTeach == nil, []string{}, t.SubjectsCanTeach),
		ClassesHandled:    lo.Ternary(t.ClassesHandled == nil, []string{}, t.ClassesHandled),
		MaxPeriodsPerDay:  t.MaxPeriodsPerDay,
		MaxPeriodsPerWeek: t.MaxPeriodsPerWeek,
		AvailableDays:     lo.Uniq(days),
		IsAbsent:          t.IsAbsent,
		SubjectClassMap: lo.Map(t.SubjectClassMap, func(m dto.LegacySubjectClassMapping, _ int) models.SubjectClassMapping {
			return models.SubjectClassMapping{Subject: strings.TrimSpace(m.Subject), ClassIDs: m.ClassIDs}
		}),
	}
	return teacher, nil
}

func convertLegacyTimetable(t dto.LegacyTimetable) (*models.TimetableVersion, error) {
	version := &models.TimetableVersion{
		ID:          t.VersionID,
		GeneratedAt: parseLegacyTime(t.GeneratedAt),
		Score:       t.Score,
		Status:      legacyStatus(t.Status),
		IsActive:    t.IsActive,
		Entries:     make([]models.TimetableEntry, 0, len(t.Entries)),
		Errors:      []string{},
	}
	for _, e := range t.Entries {
		day, err := models.ParseDay(e.Day)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("timetable entry %s has an invalid day", e.TimetableID))
		}
		version.Entries = append(version.Entries, models.TimetableEntry{
			ID:          e.TimetableID,
			ClassID:     e.ClassID,
			Day:         day,
			Period:      e.Period,
			TimeSlot:    e.TimeSlot,
			SubjectID:   e.SubjectID,
			TeacherID:   e.TeacherID,
			Room:        e.Room,
			Status:      legacyStatus(e.Status),
			GeneratedAt: parseLegacyTime(e.GeneratedAt),
		})
	}
	return version, nil
}

func legacyStatus(raw string) models.TimetableStatus {
	switch models.TimetableStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case models.TimetableStatusApproved:
		return models.TimetableStatusApproved
	case models.TimetableStatusLocked:
		return models.TimetableStatusLocked
	default:
		return models.TimetableStatusDraft
	}
}

func parseLegacyTime(raw string) time.Time {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC()
	}
	return time.Time{}
}
