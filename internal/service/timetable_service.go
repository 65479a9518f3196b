package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cse-aiml/timetable-api/internal/models"
	appErrors "github.com/cse-aiml/timetable-api/pkg/errors"
)

type timetableRepository interface {
	EnsureDay(ctx context.Context, day string) (*models.DaySchedule, error)
	FindDay(ctx context.Context, day string) (*models.DaySchedule, error)
	ListDays(ctx context.Context, filter models.TimetableFilter) ([]models.DaySchedule, int, error)
	FindSlot(ctx context.Context, day string, period int) (*models.Slot, error)
	InsertSlot(ctx context.Context, slot *models.Slot) error
	UpdateSlot(ctx context.Context, day string, period int, upd models.SlotUpdate) error
	DeleteSlot(ctx context.Context, day string, period int) error
	ListSlotsByFaculty(ctx context.Context, facultyID string) ([]models.Slot, error)
	ListSlotsByRoom(ctx context.Context, room, day string) ([]models.Slot, error)
}

type facultyResolver interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type courseResolver interface {
	FindByCode(ctx context.Context, code string) (*models.Course, error)
}

const timetableCachePrefix = "timetable:"

// CreateSlotRequest describes payload for creating a timetable slot.
type CreateSlotRequest struct {
	DayOfWeek  string  `json:"day_of_week" validate:"required"`
	Period     int     `json:"period" validate:"required,gt=0"`
	StartTime  string  `json:"start_time" validate:"required"`
	EndTime    string  `json:"end_time" validate:"required"`
	Type       string  `json:"type" validate:"required"`
	CourseCode *string `json:"course_code,omitempty"`
	FacultyID  *string `json:"faculty_id,omitempty"`
	Room       *string `json:"room,omitempty"`
}

// RoomAvailabilityRequest describes a room conflict/availability query.
type RoomAvailabilityRequest struct {
	Room      string `json:"room" validate:"required"`
	DayOfWeek string `json:"day_of_week,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// FreePeriodsRequest describes a free-period search.
type FreePeriodsRequest struct {
	DayOfWeek string `json:"day_of_week,omitempty"`
	FacultyID string `json:"faculty_id,omitempty"`
	Room      string `json:"room,omitempty"`
}

// TimetableService implements the timetable engine: slot CRUD against the
// weekly grid plus the conflict and availability queries derived from it.
type TimetableService struct {
	repo          timetableRepository
	faculties     facultyResolver
	courses       courseResolver
	cache         *CacheService
	validator     *validator.Validate
	logger        *zap.Logger
	periodsPerDay int
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(repo timetableRepository, faculties facultyResolver, courses courseResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger, periodsPerDay int) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if periodsPerDay <= 0 {
		periodsPerDay = 8
	}
	return &TimetableService{
		repo:          repo,
		faculties:     faculties,
		courses:       courses,
		cache:         cache,
		validator:     validate,
		logger:        logger,
		periodsPerDay: periodsPerDay,
	}
}

// CreateSlot adds a slot to a day schedule, creating the schedule on first
// use. A period already occupied on that day is rejected as a conflict.
func (s *TimetableService) CreateSlot(ctx context.Context, req CreateSlotRequest) (*models.DaySchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}

	day, ok := models.CanonicalDay(req.DayOfWeek)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidDay, fmt.Sprintf("invalid day of week %q", req.DayOfWeek))
	}
	if err := validateClockPair(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := s.resolveReferences(ctx, req.FacultyID, req.CourseCode); err != nil {
		return nil, err
	}

	if _, err := s.repo.EnsureDay(ctx, day); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare day schedule")
	}

	if existing, err := s.repo.FindSlot(ctx, day, req.Period); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("period %d already occupied on %s", req.Period, day))
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing slot")
	}

	slot := &models.Slot{
		DayOfWeek:  day,
		Period:     req.Period,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Type:       req.Type,
		CourseCode: req.CourseCode,
		FacultyID:  req.FacultyID,
		Room:       req.Room,
	}
	if err := s.repo.InsertSlot(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}

	s.invalidateCache(ctx)
	return s.daySnapshot(ctx, day)
}

// UpdateSlot merges the provided fields into the slot at (day, period).
func (s *TimetableService) UpdateSlot(ctx context.Context, dayOfWeek string, period int, upd models.SlotUpdate) (*models.DaySchedule, error) {
	day, ok := models.CanonicalDay(dayOfWeek)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidDay, fmt.Sprintf("invalid day of week %q", dayOfWeek))
	}
	if upd.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no update data provided")
	}
	if upd.StartTime != nil && !models.ValidClock(*upd.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid start time %q", *upd.StartTime))
	}
	if upd.EndTime != nil && !models.ValidClock(*upd.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid end time %q", *upd.EndTime))
	}

	existing, err := s.findSlotStrict(ctx, day, period)
	if err != nil {
		return nil, err
	}

	// Ordering is checked against the post-update pair: both new values when
	// both are supplied, otherwise the new value against the retained one.
	start := existing.StartTime
	end := existing.EndTime
	if upd.StartTime != nil {
		start = *upd.StartTime
	}
	if upd.EndTime != nil {
		end = *upd.EndTime
	}
	if models.ClockMinutes(start) >= models.ClockMinutes(end) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeRange, fmt.Sprintf("start %s must be before end %s", start, end))
	}

	if err := s.resolveReferences(ctx, upd.FacultyID, upd.CourseCode); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSlot(ctx, day, period, upd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrSlotNotFound, fmt.Sprintf("no slot found for period %d on %s", period, day))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot")
	}

	s.invalidateCache(ctx)
	return s.daySnapshot(ctx, day)
}

// DeleteSlot removes the slot at (day, period).
func (s *TimetableService) DeleteSlot(ctx context.Context, dayOfWeek string, period int) (*models.DaySchedule, error) {
	day, ok := models.CanonicalDay(dayOfWeek)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidDay, fmt.Sprintf("invalid day of week %q", dayOfWeek))
	}

	if _, err := s.findDayStrict(ctx, day); err != nil {
		return nil, err
	}

	if err := s.repo.DeleteSlot(ctx, day, period); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrSlotNotFound, fmt.Sprintf("no slot found for period %d on %s", period, day))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}

	s.invalidateCache(ctx)
	return s.daySnapshot(ctx, day)
}

// GetTimetable lists day schedules. An unknown day filter is ignored rather
// than rejected so read queries never hard-fail on a bad filter.
func (s *TimetableService) GetTimetable(ctx context.Context, filter models.TimetableFilter) ([]models.DaySchedule, *models.Pagination, error) {
	if filter.DayOfWeek != "" {
		if day, ok := models.CanonicalDay(filter.DayOfWeek); ok {
			filter.DayOfWeek = day
		} else {
			filter.DayOfWeek = ""
		}
	}

	days, total, err := s.repo.ListDays(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return days, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetTimetableByDay returns one day's schedule snapshot.
func (s *TimetableService) GetTimetableByDay(ctx context.Context, dayOfWeek string) (*models.DaySchedule, error) {
	day, ok := models.CanonicalDay(dayOfWeek)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidDay, fmt.Sprintf("invalid day of week %q", dayOfWeek))
	}

	cacheKey := timetableCachePrefix + "day:" + day
	var cached models.DaySchedule
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	sched, err := s.findDayStrict(ctx, day)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, cacheKey, sched, 0)
	return sched, nil
}

// GetFacultySchedule collects the faculty member's slots across the week,
// grouped by day in weekday order with periods ascending.
func (s *TimetableService) GetFacultySchedule(ctx context.Context, facultyID string) (*models.FacultySchedule, error) {
	faculty, err := s.faculties.FindByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrFacultyNotFound, fmt.Sprintf("faculty %s not found", facultyID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
	}

	slots, err := s.repo.ListSlotsByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty slots")
	}

	byDay := make(map[string][]models.Slot)
	for _, slot := range slots {
		byDay[slot.DayOfWeek] = append(byDay[slot.DayOfWeek], slot)
	}

	schedule := &models.FacultySchedule{Faculty: faculty.Info(), Days: []models.FacultyScheduleDay{}}
	for _, day := range models.Weekdays {
		if daySlots, ok := byDay[day]; ok {
			schedule.Days = append(schedule.Days, models.FacultyScheduleDay{DayOfWeek: day, Slots: daySlots})
		}
	}
	return schedule, nil
}

// CheckRoomAvailability reports the slots occupying a room and, when no time
// window is given, the free period indexes per day. A window conflicts with a
// slot iff windowStart < slotEnd and windowEnd > slotStart, so windows that
// only touch a slot boundary do not conflict.
func (s *TimetableService) CheckRoomAvailability(ctx context.Context, req RoomAvailabilityRequest) (*models.RoomAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	if req.StartTime != "" && !models.ValidClock(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid start time %q", req.StartTime))
	}
	if req.EndTime != "" && !models.ValidClock(req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid end time %q", req.EndTime))
	}

	dayFilter := ""
	if req.DayOfWeek != "" {
		if day, ok := models.CanonicalDay(req.DayOfWeek); ok {
			dayFilter = day
		}
	}

	slots, err := s.repo.ListSlotsByRoom(ctx, req.Room, dayFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room slots")
	}

	hasWindow := req.StartTime != "" && req.EndTime != ""
	windowStart := models.ClockMinutes(req.StartTime)
	windowEnd := models.ClockMinutes(req.EndTime)

	result := &models.RoomAvailability{
		Room:           req.Room,
		Conflicts:      []models.RoomConflict{},
		AvailableSlots: []models.AvailablePeriod{},
	}

	occupied := make(map[string]map[int]bool)
	for _, slot := range slots {
		if occupied[slot.DayOfWeek] == nil {
			occupied[slot.DayOfWeek] = make(map[int]bool)
		}
		occupied[slot.DayOfWeek][slot.Period] = true

		if hasWindow {
			slotStart := models.ClockMinutes(slot.StartTime)
			slotEnd := models.ClockMinutes(slot.EndTime)
			if !(windowStart < slotEnd && windowEnd > slotStart) {
				continue
			}
		}
		result.Conflicts = append(result.Conflicts, models.RoomConflict{
			DayOfWeek:  slot.DayOfWeek,
			Period:     slot.Period,
			StartTime:  slot.StartTime,
			EndTime:    slot.EndTime,
			Type:       slot.Type,
			CourseCode: slot.CourseCode,
			FacultyID:  slot.FacultyID,
		})
	}

	// Free periods are a period-index scan over the teaching grid; a true
	// time-gap search is out of scope, so they are only reported when the
	// caller did not narrow the check to a time window.
	if !hasWindow {
		for _, day := range models.TeachingDays {
			if dayFilter != "" && day != dayFilter {
				continue
			}
			for period := 1; period <= s.periodsPerDay; period++ {
				if !occupied[day][period] {
					result.AvailableSlots = append(result.AvailableSlots, models.AvailablePeriod{
						DayOfWeek: day,
						Period:    period,
						Status:    "available",
					})
				}
			}
		}
	}

	result.TotalConflicts = len(result.Conflicts)
	result.TotalAvailable = len(result.AvailableSlots)
	return result, nil
}

// GetFreePeriods enumerates the periods not matched by the active occupancy
// filter. With both a faculty and a room filter a period counts as occupied
// when either is busy, so a reported period is free for the pairing.
func (s *TimetableService) GetFreePeriods(ctx context.Context, req FreePeriodsRequest) (*models.FreePeriodsResult, error) {
	result := &models.FreePeriodsResult{
		FreePeriods: []models.FreePeriod{},
		Criteria: models.FreePeriodCriteria{
			DayOfWeek: req.DayOfWeek,
			FacultyID: req.FacultyID,
			Room:      req.Room,
		},
	}

	daysInScope := models.TeachingDays
	if req.DayOfWeek != "" {
		day, ok := models.CanonicalDay(req.DayOfWeek)
		if !ok {
			// Unknown labels are treated as "no matches", not as an error.
			return result, nil
		}
		daysInScope = []string{day}
	}

	schedules, _, err := s.repo.ListDays(ctx, models.TimetableFilter{PageSize: len(models.Weekdays)})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	byDay := make(map[string]models.DaySchedule, len(schedules))
	for _, sched := range schedules {
		byDay[sched.DayOfWeek] = sched
	}

	for _, day := range daysInScope {
		sched, exists := byDay[day]
		if !exists {
			for period := 1; period <= s.periodsPerDay; period++ {
				result.FreePeriods = append(result.FreePeriods, placeholderFreePeriod(day, period, models.FreePeriodStatusCompletelyFree))
			}
			continue
		}

		occupied := make(map[int]bool)
		for _, slot := range sched.Slots {
			switch {
			case req.FacultyID != "" && req.Room != "":
				if slot.TaughtBy(req.FacultyID) || slot.InRoom(req.Room) {
					occupied[slot.Period] = true
				}
			case req.FacultyID != "":
				if slot.TaughtBy(req.FacultyID) {
					occupied[slot.Period] = true
				}
			case req.Room != "":
				if slot.InRoom(req.Room) {
					occupied[slot.Period] = true
				}
			default:
				occupied[slot.Period] = true
			}
		}

		for period := 1; period <= s.periodsPerDay; period++ {
			if !occupied[period] {
				result.FreePeriods = append(result.FreePeriods, placeholderFreePeriod(day, period, models.FreePeriodStatusFree))
			}
		}
	}

	result.TotalFree = len(result.FreePeriods)
	return result, nil
}

// placeholderFreePeriod derives display times from the period index assuming
// a 09:00 first period; it does not reflect recorded slot times.
func placeholderFreePeriod(day string, period int, status string) models.FreePeriod {
	return models.FreePeriod{
		DayOfWeek: day,
		Period:    period,
		StartTime: fmt.Sprintf("%02d:00", 8+period),
		EndTime:   fmt.Sprintf("%02d:00", 9+period),
		Status:    status,
	}
}

func (s *TimetableService) daySnapshot(ctx context.Context, day string) (*models.DaySchedule, error) {
	sched, err := s.repo.FindDay(ctx, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day schedule")
	}
	return sched, nil
}

func (s *TimetableService) findDayStrict(ctx context.Context, day string) (*models.DaySchedule, error) {
	sched, err := s.repo.FindDay(ctx, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrScheduleNotFound, fmt.Sprintf("no timetable found for %s", day))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day schedule")
	}
	return sched, nil
}

func (s *TimetableService) findSlotStrict(ctx context.Context, day string, period int) (*models.Slot, error) {
	if _, err := s.findDayStrict(ctx, day); err != nil {
		return nil, err
	}
	slot, err := s.repo.FindSlot(ctx, day, period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrSlotNotFound, fmt.Sprintf("no slot found for period %d on %s", period, day))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	return slot, nil
}

func (s *TimetableService) resolveReferences(ctx context.Context, facultyID, courseCode *string) error {
	if facultyID != nil && *facultyID != "" {
		if _, err := s.faculties.FindByID(ctx, *facultyID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrFacultyNotFound, fmt.Sprintf("faculty %s not found", *facultyID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
		}
	}
	if courseCode != nil && *courseCode != "" {
		if _, err := s.courses.FindByCode(ctx, *courseCode); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrCourseNotFound, fmt.Sprintf("course %s not found", *courseCode))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve course")
		}
	}
	return nil
}

func validateClockPair(start, end string) error {
	if !models.ValidClock(start) {
		return appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid start time %q", start))
	}
	if !models.ValidClock(end) {
		return appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid end time %q", end))
	}
	if models.ClockMinutes(start) >= models.ClockMinutes(end) {
		return appErrors.Clone(appErrors.ErrInvalidTimeRange, fmt.Sprintf("start %s must be before end %s", start, end))
	}
	return nil
}

func (s *TimetableService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, timetableCachePrefix+"*"); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
}
