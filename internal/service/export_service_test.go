package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cse-aiml/timetable-api/internal/models"
	appErrors "github.com/cse-aiml/timetable-api/pkg/errors"
)

type mockScheduleSource struct {
	days     []models.DaySchedule
	schedule *models.FacultySchedule
}

func (m *mockScheduleSource) GetTimetable(ctx context.Context, filter models.TimetableFilter) ([]models.DaySchedule, *models.Pagination, error) {
	return m.days, &models.Pagination{Page: 1, PageSize: 7, TotalCount: len(m.days)}, nil
}

func (m *mockScheduleSource) GetFacultySchedule(ctx context.Context, facultyID string) (*models.FacultySchedule, error) {
	return m.schedule, nil
}

func exportFixture() *mockScheduleSource {
	course := "CS101"
	room := "Lab-1"
	slot := models.Slot{Period: 1, StartTime: "09:00", EndTime: "10:00", Type: "class", CourseCode: &course, Room: &room}
	return &mockScheduleSource{
		days: []models.DaySchedule{
			{DayOfWeek: "monday", Slots: []models.Slot{slot}},
		},
		schedule: &models.FacultySchedule{
			Faculty: models.FacultyInfo{ID: "f1", EmployeeID: "EMP01", FullName: "Dr. Rao"},
			Days: []models.FacultyScheduleDay{
				{DayOfWeek: "monday", Slots: []models.Slot{slot}},
			},
		},
	}
}

func TestExportTimetableCSV(t *testing.T) {
	service := NewExportService(exportFixture(), zap.NewNop(), true)

	file, err := service.ExportTimetable(context.Background(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "timetable.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)

	content := string(file.Content)
	assert.Contains(t, content, "Day,Period,Start,End,Type,Course,Faculty,Room")
	assert.Contains(t, content, "Monday,1,09:00,10:00,class,CS101,,Lab-1")
}

func TestExportTimetablePDF(t *testing.T) {
	service := NewExportService(exportFixture(), zap.NewNop(), true)

	file, err := service.ExportTimetable(context.Background(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "timetable.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportFacultySchedule(t *testing.T) {
	service := NewExportService(exportFixture(), zap.NewNop(), true)

	file, err := service.ExportFacultySchedule(context.Background(), "f1", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "faculty-schedule-EMP01.csv", file.FileName)
	assert.Contains(t, string(file.Content), "Monday,1")
}

func TestExportUnsupportedFormat(t *testing.T) {
	service := NewExportService(exportFixture(), zap.NewNop(), true)

	_, err := service.ExportTimetable(context.Background(), ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceDisabled(t *testing.T) {
	service := NewExportService(exportFixture(), zap.NewNop(), false)
	assert.False(t, service.Enabled())

	var nilService *ExportService
	assert.False(t, nilService.Enabled())
}
