package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cse-aiml/timetable-api/internal/models"
	"github.com/cse-aiml/timetable-api/internal/service"
	appErrors "github.com/cse-aiml/timetable-api/pkg/errors"
	"github.com/cse-aiml/timetable-api/pkg/response"
)

// TimetableHandler manages timetable endpoints.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// List godoc
// @Summary List the weekly timetable
// @Tags Timetable
// @Produce json
// @Param day query string false "Filter by day of week"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var filter models.TimetableFilter
	filter.DayOfWeek = strings.ToLower(c.Query("day"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "7")); err == nil {
		filter.PageSize = limit
	}
	filter.SortOrder = c.Query("order")

	days, pagination, err := h.service.GetTimetable(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, pagination)
}

// GetByDay godoc
// @Summary Get the schedule for one day
// @Tags Timetable
// @Produce json
// @Param day path string true "Day of week"
// @Success 200 {object} response.Envelope
// @Router /timetable/{day} [get]
func (h *TimetableHandler) GetByDay(c *gin.Context) {
	day, err := h.service.GetTimetableByDay(c.Request.Context(), c.Param("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// CreateSlot godoc
// @Summary Add a slot to a day schedule
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Router /timetable/slots [post]
func (h *TimetableHandler) CreateSlot(c *gin.Context) {
	var req service.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	day, err := h.service.CreateSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, day)
}

// UpdateSlot godoc
// @Summary Update fields of an existing slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param day path string true "Day of week"
// @Param period path int true "Period number"
// @Param payload body models.SlotUpdate true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /timetable/{day}/slots/{period} [patch]
func (h *TimetableHandler) UpdateSlot(c *gin.Context) {
	period, err := strconv.Atoi(c.Param("period"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "period must be an integer"))
		return
	}
	var upd models.SlotUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	day, err := h.service.UpdateSlot(c.Request.Context(), c.Param("day"), period, upd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// DeleteSlot godoc
// @Summary Remove a slot from a day schedule
// @Tags Timetable
// @Produce json
// @Param day path string true "Day of week"
// @Param period path int true "Period number"
// @Success 200 {object} response.Envelope
// @Router /timetable/{day}/slots/{period} [delete]
func (h *TimetableHandler) DeleteSlot(c *gin.Context) {
	period, err := strconv.Atoi(c.Param("period"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "period must be an integer"))
		return
	}
	day, err := h.service.DeleteSlot(c.Request.Context(), c.Param("day"), period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// FacultySchedule godoc
// @Summary Get a faculty member's weekly schedule
// @Tags Timetable
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculties/{id}/schedule [get]
func (h *TimetableHandler) FacultySchedule(c *gin.Context) {
	schedule, err := h.service.GetFacultySchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// RoomAvailability godoc
// @Summary Check room availability and conflicts
// @Tags Timetable
// @Produce json
// @Param room query string true "Room identifier"
// @Param day query string false "Day of week"
// @Param start query string false "Window start (HH:MM)"
// @Param end query string false "Window end (HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /rooms/availability [get]
func (h *TimetableHandler) RoomAvailability(c *gin.Context) {
	req := service.RoomAvailabilityRequest{
		Room:      c.Query("room"),
		DayOfWeek: strings.ToLower(c.Query("day")),
		StartTime: c.Query("start"),
		EndTime:   c.Query("end"),
	}
	availability, err := h.service.CheckRoomAvailability(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// FreePeriods godoc
// @Summary Find free periods across the week
// @Tags Timetable
// @Produce json
// @Param day query string false "Restrict to one day"
// @Param facultyId query string false "Periods where this faculty member is free"
// @Param room query string false "Periods where this room is free"
// @Success 200 {object} response.Envelope
// @Router /timetable/free-periods [get]
func (h *TimetableHandler) FreePeriods(c *gin.Context) {
	req := service.FreePeriodsRequest{
		DayOfWeek: strings.ToLower(c.Query("day")),
		FacultyID: c.Query("facultyId"),
		Room:      c.Query("room"),
	}
	result, err := h.service.GetFreePeriods(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
