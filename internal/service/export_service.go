package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type fileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Open(relPath string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type urlSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string) (ownerID, relPath string, expiresAt time.Time, err error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	// Retention is how long rendered files stay on disk.
	Retention time.Duration
}

// ExportService renders class timetables to CSV or PDF and hands out signed
// download links.
type ExportService struct {
	workspaces workspaceAccessor
	storage    fileStorage
	signer     urlSigner
	csv        tableRenderer
	pdf        tableRenderer
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// package exporters.
func NewExportService(workspaces workspaceAccessor, storage fileStorage, signer urlSigner, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger, csv, pdf tableRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		workspaces: workspaces,
		storage:    storage,
		signer:     signer,
		csv:        csv,
		pdf:        pdf,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// Export renders one class timetable and stores it.
func (s *ExportService) Export(ctx context.Context, ownerID string, req dto.ExportRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = "csv"
	}

	ws, err := s.workspaces.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	idx := ws.FindClass(req.ClassID)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if ws.Timetable == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
	}
	class := ws.Classes[idx]
	table := ClassTable(ws, class)

	var payload []byte
	switch format {
	case "csv":
		payload, err = s.csv.Render(table)
	case "pdf":
		payload, err = s.pdf.Render(table)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	fileName := fmt.Sprintf("timetable_%s.%s", sanitizeFilename(class.Label()), format)
	relPath, err := s.storage.Save(path.Join(sanitizeFilename(ownerID), uuid.NewString(), fileName), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(ownerID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export url")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("timetable exported",
		zap.String("owner_id", ownerID),
		zap.String("class_id", class.ID),
		zap.String("format", format),
		zap.Int("bytes", len(payload)),
	)
	return &dto.ExportResponse{
		FileName:  fileName,
		Format:    format,
		URL:       fmt.Sprintf("%s/exports/%s", prefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a signed token to the stored file and its download name.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return file, path.Base(relPath), nil
}

// Cleanup removes files older than ttl, or the configured retention when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.Retention
	}
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.logger.Info("exports cleaned up", zap.Int("removed", len(removed)))
	}
	return removed, nil
}

// ClassTable lays out one class's entries as Day, Period, Time, Subject,
// Teacher, Room rows ordered by day then period.
func ClassTable(ws *models.Workspace, class models.Class) export.Table {
	subjects := lo.KeyBy(ws.Subjects, func(s models.Subject) string { return s.ID })
	teachers := lo.KeyBy(ws.Teachers, func(t models.Teacher) string { return t.ID })

	entries := classEntries(ws.Timetable.Entries, class.ID)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		subjectName := e.SubjectID
		if subject, ok := subjects[e.SubjectID]; ok {
			subjectName = subject.Name
		}
		teacherName := e.TeacherID
		if teacher, ok := teachers[e.TeacherID]; ok {
			teacherName = teacher.Name
		}
		if e.SubstitutedFor != "" {
			teacherName += " (sub)"
		}
		rows = append(rows, []string{e.Day.String(), fmt.Sprintf("%d", e.Period), e.TimeSlot, subjectName, teacherName, e.Room})
	}

	notes := []string{fmt.Sprintf("Status: %s", ws.Timetable.Status)}
	if ws.School.AcademicYear != "" {
		notes = append([]string{fmt.Sprintf("Academic year %s", ws.School.AcademicYear)}, notes...)
	}
	title := fmt.Sprintf("Timetable %s", class.Label())
	if ws.School.SchoolName != "" {
		title = fmt.Sprintf("%s: %s", ws.School.SchoolName, title)
	}
	return export.Table{
		Title:   title,
		Notes:   notes,
		Headers: []string{"Day", "Period", "Time", "Subject", "Teacher", "Room"},
		Rows:    rows,
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
