package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cse-aiml/timetable-api/internal/service"
	appErrors "github.com/cse-aiml/timetable-api/pkg/errors"
	"github.com/cse-aiml/timetable-api/pkg/response"
)

// ExportHandler serves timetable downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Timetable godoc
// @Summary Download the weekly timetable
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /exports/timetable [get]
func (h *ExportHandler) Timetable(c *gin.Context) {
	file, err := h.service.ExportTimetable(c.Request.Context(), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// FacultySchedule godoc
// @Summary Download a faculty member's schedule
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Faculty ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /exports/faculties/{id}/schedule [get]
func (h *ExportHandler) FacultySchedule(c *gin.Context) {
	file, err := h.service.ExportFacultySchedule(c.Request.Context(), c.Param("id"), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

func exportFormat(c *gin.Context) service.ExportFormat {
	return service.ExportFormat(c.DefaultQuery("format", "csv"))
}

func serveFile(c *gin.Context, file *service.ExportFile) {
	if file == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
