package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

type failingRenderer struct{}

func (failingRenderer) Render(export.Table) ([]byte, error) {
	return nil, errors.New("renderer down")
}

func newTestExportService(t *testing.T, pdf tableRenderer) (*ExportService, *WorkspaceService, *storage.LocalStorage) {
	t.Helper()
	fileStore, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	workspaces := NewWorkspaceService(nil, nil)
	svc := NewExportService(workspaces, fileStore, storage.NewSignedURLSigner("secret", time.Hour), ExportConfig{APIPrefix: "/api/v1/"}, nil, nil, nil, pdf)
	return svc, workspaces, fileStore
}

func tokenFromURL(t *testing.T, url string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(url, "/api/v1/exports/"), url)
	return strings.TrimPrefix(url, "/api/v1/exports/")
}

func TestExportServiceCSVRoundTrip(t *testing.T) {
	svc, workspaces, _ := newTestExportService(t, nil)
	ctx := context.Background()

	_, err := svc.Export(ctx, "school-1", dto.ExportRequest{ClassID: "c1"})
	requireAppError(t, err, appErrors.ErrNotFound)

	timetables := NewTimetableService(workspaces, nil, nil, TimetableConfig{}, nil, nil)
	_, err = timetables.Generate(ctx, "school-1", dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	res, err := svc.Export(ctx, "school-1", dto.ExportRequest{ClassID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "csv", res.Format)
	assert.Equal(t, "timetable_X-A.csv", res.FileName)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	file, name, err := svc.Open(tokenFromURL(t, res.URL))
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "timetable_X-A.csv", name)

	body, err := io.ReadAll(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Equal(t, "Day,Period,Time,Subject,Teacher,Room", lines[0])
	assert.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[1], "Monday,"), lines[1])
}

func TestExportServicePDF(t *testing.T) {
	svc, workspaces, _ := newTestExportService(t, nil)
	ctx := context.Background()
	timetables := NewTimetableService(workspaces, nil, nil, TimetableConfig{}, nil, nil)
	_, err := timetables.Generate(ctx, "school-1", dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	res, err := svc.Export(ctx, "school-1", dto.ExportRequest{ClassID: "c3", Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "timetable_IX-A.pdf", res.FileName)

	file, _, err := svc.Open(tokenFromURL(t, res.URL))
	require.NoError(t, err)
	defer file.Close()
	head := make([]byte, 5)
	_, err = io.ReadFull(file, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(head))
}

func TestExportServiceErrors(t *testing.T) {
	svc, workspaces, _ := newTestExportService(t, failingRenderer{})
	ctx := context.Background()
	timetables := NewTimetableService(workspaces, nil, nil, TimetableConfig{}, nil, nil)
	_, err := timetables.Generate(ctx, "school-1", dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	_, err = svc.Export(ctx, "school-1", dto.ExportRequest{ClassID: "c1", Format: "xlsx"})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = svc.Export(ctx, "school-1", dto.ExportRequest{ClassID: "missing"})
	requireAppError(t, err, appErrors.ErrNotFound)

	_, err = svc.Export(ctx, "school-1", dto.ExportRequest{ClassID: "c1", Format: "pdf"})
	requireAppError(t, err, appErrors.ErrInternal)

	_, _, err = svc.Open("not-a-token")
	requireAppError(t, err, appErrors.ErrForbidden)
}

func TestExportServiceOpenAfterCleanup(t *testing.T) {
	svc, workspaces, _ := newTestExportService(t, nil)
	ctx := context.Background()
	timetables := NewTimetableService(workspaces, nil, nil, TimetableConfig{}, nil, nil)
	_, err := timetables.Generate(ctx, "school-1", dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	res, err := svc.Export(ctx, "school-1", dto.ExportRequest{ClassID: "c2"})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	removed, err := svc.Cleanup(time.Millisecond)
	require.NoError(t, err)
	assert.NotEmpty(t, removed)

	_, _, err = svc.Open(tokenFromURL(t, res.URL))
	requireAppError(t, err, appErrors.ErrNotFound)
}

func TestClassTableMarksSubstitutes(t *testing.T) {
	ws := DefaultWorkspace()
	ws.Timetable = &models.TimetableVersion{
		Status: models.TimetableStatusDraft,
		Entries: []models.TimetableEntry{
			{ClassID: "c1", Day: models.Tuesday, Period: 2, TimeSlot: "08:40 - 09:20", SubjectID: "c1_math", TeacherID: "t2", SubstitutedFor: "t1"},
			{ClassID: "c1", Day: models.Monday, Period: 1, TimeSlot: "08:00 - 08:40", SubjectID: "c1_eng", TeacherID: "t3"},
			{ClassID: "c2", Day: models.Monday, Period: 1, SubjectID: "c2_eng", TeacherID: "t3"},
		},
	}

	table := ClassTable(ws, ws.Classes[0])
	assert.Equal(t, "Sample Public School: Timetable X-A", table.Title)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Monday", "1", "08:00 - 08:40", "English", "Ms. Gupta", ""}, table.Rows[0])
	assert.Equal(t, []string{"Tuesday", "2", "08:40 - 09:20", "Mathematics", "Mr. Patel (sub)", ""}, table.Rows[1])
	assert.Contains(t, table.Notes, "Status: draft")
}
