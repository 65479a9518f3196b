package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cse-aiml/timetable-api/internal/models"
)

// TimetableRepository persists the weekly timetable: one row per weekday in
// timetable_days plus the slot set in timetable_slots keyed by (day, period).
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const dayColumns = "id, day_of_week, created_at, updated_at"
const slotColumns = "id, day_of_week, period, start_time, end_time, slot_type, course_code, faculty_id, room, created_at, updated_at"

// EnsureDay creates the day document on first use and returns it.
func (r *TimetableRepository) EnsureDay(ctx context.Context, day string) (*models.DaySchedule, error) {
	now := time.Now().UTC()
	const insert = `INSERT INTO timetable_days (id, day_of_week, created_at, updated_at) VALUES ($1, $2, $3, $3) ON CONFLICT (day_of_week) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), day, now); err != nil {
		return nil, fmt.Errorf("ensure timetable day: %w", err)
	}

	var sched models.DaySchedule
	if err := r.db.GetContext(ctx, &sched, `SELECT `+dayColumns+` FROM timetable_days WHERE day_of_week = $1`, day); err != nil {
		return nil, fmt.Errorf("load timetable day: %w", err)
	}
	return &sched, nil
}

// FindDay loads one day schedule with its slots ordered by period.
// Returns sql.ErrNoRows when no schedule exists for the day.
func (r *TimetableRepository) FindDay(ctx context.Context, day string) (*models.DaySchedule, error) {
	var sched models.DaySchedule
	if err := r.db.GetContext(ctx, &sched, `SELECT `+dayColumns+` FROM timetable_days WHERE day_of_week = $1`, day); err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &sched.Slots, `SELECT `+slotColumns+` FROM timetable_slots WHERE day_of_week = $1 ORDER BY period ASC`, day); err != nil {
		return nil, fmt.Errorf("load slots for %s: %w", day, err)
	}
	return &sched, nil
}

// ListDays returns day schedules, optionally filtered to one weekday.
func (r *TimetableRepository) ListDays(ctx context.Context, filter models.TimetableFilter) ([]models.DaySchedule, int, error) {
	base := "FROM timetable_days WHERE 1=1"
	var args []interface{}
	if filter.DayOfWeek != "" {
		base += fmt.Sprintf(" AND day_of_week = $%d", len(args)+1)
		args = append(args, filter.DayOfWeek)
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY day_of_week %s LIMIT %d OFFSET %d", dayColumns, base, order, size, offset)
	var days []models.DaySchedule
	if err := r.db.SelectContext(ctx, &days, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetable days: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetable days: %w", err)
	}

	for i := range days {
		if err := r.db.SelectContext(ctx, &days[i].Slots, `SELECT `+slotColumns+` FROM timetable_slots WHERE day_of_week = $1 ORDER BY period ASC`, days[i].DayOfWeek); err != nil {
			return nil, 0, fmt.Errorf("load slots for %s: %w", days[i].DayOfWeek, err)
		}
	}

	return days, total, nil
}

// FindSlot loads the slot at (day, period). Returns sql.ErrNoRows when absent.
func (r *TimetableRepository) FindSlot(ctx context.Context, day string, period int) (*models.Slot, error) {
	var slot models.Slot
	if err := r.db.GetContext(ctx, &slot, `SELECT `+slotColumns+` FROM timetable_slots WHERE day_of_week = $1 AND period = $2`, day, period); err != nil {
		return nil, err
	}
	return &slot, nil
}

// InsertSlot stores a new slot and touches the day document timestamp.
// The UNIQUE(day_of_week, period) index rejects concurrent duplicate creates.
func (r *TimetableRepository) InsertSlot(ctx context.Context, slot *models.Slot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert slot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO timetable_slots (id, day_of_week, period, start_time, end_time, slot_type, course_code, faculty_id, room, created_at, updated_at) VALUES (:id, :day_of_week, :period, :start_time, :end_time, :slot_type, :course_code, :faculty_id, :room, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE timetable_days SET updated_at = $1 WHERE day_of_week = $2`, now, slot.DayOfWeek); err != nil {
		return fmt.Errorf("touch timetable day: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit insert slot: %w", err)
	}
	return nil
}

// UpdateSlot applies a partial edit to the slot at (day, period) in a single
// conditional statement. Returns sql.ErrNoRows when the slot does not exist.
func (r *TimetableRepository) UpdateSlot(ctx context.Context, day string, period int, upd models.SlotUpdate) error {
	sets := []string{}
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if upd.StartTime != nil {
		appendSet("start_time", *upd.StartTime)
	}
	if upd.EndTime != nil {
		appendSet("end_time", *upd.EndTime)
	}
	if upd.Type != nil {
		appendSet("slot_type", *upd.Type)
	}
	if upd.CourseCode != nil {
		appendSet("course_code", *upd.CourseCode)
	}
	if upd.FacultyID != nil {
		appendSet("faculty_id", *upd.FacultyID)
	}
	if upd.Room != nil {
		appendSet("room", *upd.Room)
	}

	now := time.Now().UTC()
	appendSet("updated_at", now)

	query := fmt.Sprintf("UPDATE timetable_slots SET %s WHERE day_of_week = $%d AND period = $%d",
		strings.Join(sets, ", "), len(args)+1, len(args)+2)
	args = append(args, day, period)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update slot rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE timetable_days SET updated_at = $1 WHERE day_of_week = $2`, now, day); err != nil {
		return fmt.Errorf("touch timetable day: %w", err)
	}
	return nil
}

// DeleteSlot removes the slot at (day, period).
// Returns sql.ErrNoRows when the slot does not exist.
func (r *TimetableRepository) DeleteSlot(ctx context.Context, day string, period int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timetable_slots WHERE day_of_week = $1 AND period = $2`, day, period)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE timetable_days SET updated_at = $1 WHERE day_of_week = $2`, time.Now().UTC(), day); err != nil {
		return fmt.Errorf("touch timetable day: %w", err)
	}
	return nil
}

// ListSlotsByFaculty returns every slot assigned to the faculty member,
// ordered by period; weekday ordering is applied by the caller.
func (r *TimetableRepository) ListSlotsByFaculty(ctx context.Context, facultyID string) ([]models.Slot, error) {
	var slots []models.Slot
	if err := r.db.SelectContext(ctx, &slots, `SELECT `+slotColumns+` FROM timetable_slots WHERE faculty_id = $1 ORDER BY period ASC`, facultyID); err != nil {
		return nil, fmt.Errorf("list slots by faculty: %w", err)
	}
	return slots, nil
}

// ListSlotsByRoom returns slots booking the room, optionally restricted to one day.
func (r *TimetableRepository) ListSlotsByRoom(ctx context.Context, room, day string) ([]models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM timetable_slots WHERE room = $1`
	args := []interface{}{room}
	if day != "" {
		query += ` AND day_of_week = $2`
		args = append(args, day)
	}
	query += ` ORDER BY period ASC`

	var slots []models.Slot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list slots by room: %w", err)
	}
	return slots, nil
}
