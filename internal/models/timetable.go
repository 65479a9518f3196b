package models

import (
	"regexp"
	"strings"
	"time"
)

// Weekdays lists the canonical lower-case weekday labels accepted as input.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// TeachingDays is the fixed 6-day grid scanned by availability queries.
var TeachingDays = Weekdays[:6]

var weekdayIndex = func() map[string]int {
	idx := make(map[string]int, len(Weekdays))
	for i, d := range Weekdays {
		idx[d] = i
	}
	return idx
}()

// CanonicalDay lower-cases the label and reports whether it is a valid weekday.
func CanonicalDay(day string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(day))
	_, ok := weekdayIndex[d]
	return d, ok
}

// DayIndex returns the position of a canonical weekday label, monday first.
func DayIndex(day string) int {
	if i, ok := weekdayIndex[day]; ok {
		return i
	}
	return len(Weekdays)
}

var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClock reports whether the value is a 24-hour HH:MM time.
func ValidClock(value string) bool {
	return clockPattern.MatchString(value)
}

// ClockMinutes converts a validated HH:MM value to minutes since midnight.
// Call ValidClock first; malformed input yields -1.
func ClockMinutes(value string) int {
	if !clockPattern.MatchString(value) {
		return -1
	}
	parts := strings.SplitN(value, ":", 2)
	h := int(parts[0][len(parts[0])-1] - '0')
	if len(parts[0]) == 2 {
		h += int(parts[0][0]-'0') * 10
	}
	m := int(parts[1][0]-'0')*10 + int(parts[1][1]-'0')
	return h*60 + m
}

// Well-known slot types. The column is free-form; these are the labels the
// ERP frontend renders specially.
const (
	SlotTypeClass    = "class"
	SlotTypeLab      = "lab"
	SlotTypeTutorial = "tutorial"
	SlotTypeBreak    = "break"
	SlotTypeLunch    = "lunch"
)

// Slot is one scheduled period within a day, keyed by (day_of_week, period).
type Slot struct {
	ID         string    `db:"id" json:"-"`
	DayOfWeek  string    `db:"day_of_week" json:"-"`
	Period     int       `db:"period" json:"period"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Type       string    `db:"slot_type" json:"type"`
	CourseCode *string   `db:"course_code" json:"course_code,omitempty"`
	FacultyID  *string   `db:"faculty_id" json:"faculty_id,omitempty"`
	Room       *string   `db:"room" json:"room,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
	UpdatedAt  time.Time `db:"updated_at" json:"-"`
}

// InRoom reports whether the slot books the given room.
func (s Slot) InRoom(room string) bool {
	return s.Room != nil && *s.Room == room
}

// TaughtBy reports whether the slot is assigned to the given faculty member.
func (s Slot) TaughtBy(facultyID string) bool {
	return s.FacultyID != nil && *s.FacultyID == facultyID
}

// SlotUpdate is a partial slot edit; nil fields are left untouched.
type SlotUpdate struct {
	StartTime  *string `json:"start_time,omitempty"`
	EndTime    *string `json:"end_time,omitempty"`
	Type       *string `json:"type,omitempty"`
	CourseCode *string `json:"course_code,omitempty"`
	FacultyID  *string `json:"faculty_id,omitempty"`
	Room       *string `json:"room,omitempty"`
}

// IsZero reports whether the update carries no fields.
func (u SlotUpdate) IsZero() bool {
	return u.StartTime == nil && u.EndTime == nil && u.Type == nil &&
		u.CourseCode == nil && u.FacultyID == nil && u.Room == nil
}

// DaySchedule is the per-weekday timetable document: the ordered slot set
// for one day plus document timestamps.
type DaySchedule struct {
	ID        string    `db:"id" json:"id"`
	DayOfWeek string    `db:"day_of_week" json:"day_of_week"`
	Slots     []Slot    `db:"-" json:"slots"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableFilter describes query params for listing day schedules.
type TimetableFilter struct {
	DayOfWeek string
	Page      int
	PageSize  int
	SortOrder string
}

// FacultyScheduleDay groups a faculty member's slots for one weekday.
type FacultyScheduleDay struct {
	DayOfWeek string `json:"day_of_week"`
	Slots     []Slot `json:"slots"`
}

// FacultySchedule is the derived cross-week view for one faculty member.
type FacultySchedule struct {
	Faculty FacultyInfo          `json:"faculty"`
	Days    []FacultyScheduleDay `json:"schedule"`
}

// RoomConflict describes a slot occupying a queried room.
type RoomConflict struct {
	DayOfWeek  string  `json:"day_of_week"`
	Period     int     `json:"period"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Type       string  `json:"type"`
	CourseCode *string `json:"course_code,omitempty"`
	FacultyID  *string `json:"faculty_id,omitempty"`
}

// AvailablePeriod is a period index not booked for the queried room.
type AvailablePeriod struct {
	DayOfWeek string `json:"day_of_week"`
	Period    int    `json:"period"`
	Status    string `json:"status"`
}

// RoomAvailability is the result of a room conflict/availability check.
type RoomAvailability struct {
	Room           string            `json:"room"`
	Conflicts      []RoomConflict    `json:"conflicts"`
	AvailableSlots []AvailablePeriod `json:"available_slots"`
	TotalConflicts int               `json:"total_conflicts"`
	TotalAvailable int               `json:"total_available"`
}

// Free period status labels.
const (
	FreePeriodStatusFree           = "free"
	FreePeriodStatusCompletelyFree = "completely_free"
)

// FreePeriod is a period index not matched by the active occupancy filter.
// Start/end are placeholder display times derived from the period number,
// not the recorded slot times.
type FreePeriod struct {
	DayOfWeek string `json:"day_of_week"`
	Period    int    `json:"period"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

// FreePeriodCriteria echoes the filters a free-period search ran with.
type FreePeriodCriteria struct {
	DayOfWeek string `json:"day_of_week,omitempty"`
	FacultyID string `json:"faculty_id,omitempty"`
	Room      string `json:"room,omitempty"`
}

// FreePeriodsResult is the result of a free-period search.
type FreePeriodsResult struct {
	FreePeriods []FreePeriod       `json:"free_periods"`
	TotalFree   int                `json:"total_free"`
	Criteria    FreePeriodCriteria `json:"criteria"`
}
