package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cse-aiml/timetable-api/internal/models"
	appErrors "github.com/cse-aiml/timetable-api/pkg/errors"
	"github.com/cse-aiml/timetable-api/pkg/export"
)

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

type scheduleSource interface {
	GetTimetable(ctx context.Context, filter models.TimetableFilter) ([]models.DaySchedule, *models.Pagination, error)
	GetFacultySchedule(ctx context.Context, facultyID string) (*models.FacultySchedule, error)
}

// ExportService renders timetable views as downloadable documents.
type ExportService struct {
	schedules scheduleSource
	logger    *zap.Logger
	enabled   bool
}

// NewExportService instantiates ExportService.
func NewExportService(schedules scheduleSource, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{schedules: schedules, logger: logger, enabled: enabled}
}

// Enabled indicates whether export endpoints should be served.
func (s *ExportService) Enabled() bool {
	return s != nil && s.enabled
}

var timetableHeaders = []string{"Day", "Period", "Start", "End", "Type", "Course", "Faculty", "Room"}

// ExportTimetable renders the weekly timetable grid.
func (s *ExportService) ExportTimetable(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	days, _, err := s.schedules.GetTimetable(ctx, models.TimetableFilter{PageSize: len(models.Weekdays)})
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: timetableHeaders}
	for _, day := range days {
		for _, slot := range day.Slots {
			dataset.Rows = append(dataset.Rows, slotRow(day.DayOfWeek, slot))
		}
	}

	return s.render(dataset, format, "weekly timetable", "timetable")
}

// ExportFacultySchedule renders one faculty member's schedule.
func (s *ExportService) ExportFacultySchedule(ctx context.Context, facultyID string, format ExportFormat) (*ExportFile, error) {
	schedule, err := s.schedules.GetFacultySchedule(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: timetableHeaders}
	for _, day := range schedule.Days {
		for _, slot := range day.Slots {
			dataset.Rows = append(dataset.Rows, slotRow(day.DayOfWeek, slot))
		}
	}

	title := fmt.Sprintf("schedule - %s", schedule.Faculty.FullName)
	base := fmt.Sprintf("faculty-schedule-%s", schedule.Faculty.EmployeeID)
	return s.render(dataset, format, title, base)
}

func (s *ExportService) render(dataset export.Dataset, format ExportFormat, title, baseName string) (*ExportFile, error) {
	switch format {
	case FormatCSV:
		content, err := export.RenderCSV(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			FileName:    baseName + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case FormatPDF:
		content, err := export.RenderPDF(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			FileName:    baseName + ".pdf",
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func slotRow(day string, slot models.Slot) map[string]string {
	row := map[string]string{
		"Day":    titleDay(day),
		"Period": fmt.Sprintf("%d", slot.Period),
		"Start":  slot.StartTime,
		"End":    slot.EndTime,
		"Type":   slot.Type,
	}
	if slot.CourseCode != nil {
		row["Course"] = *slot.CourseCode
	}
	if slot.FacultyID != nil {
		row["Faculty"] = *slot.FacultyID
	}
	if slot.Room != nil {
		row["Room"] = *slot.Room
	}
	return row
}

func titleDay(day string) string {
	if day == "" {
		return day
	}
	return strings.ToUpper(day[:1]) + day[1:]
}
