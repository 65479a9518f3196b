package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cse-aiml/timetable-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func dayRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "day_of_week", "created_at", "updated_at"}).
		AddRow("d1", "monday", time.Now(), time.Now())
}

func slotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "day_of_week", "period", "start_time", "end_time", "slot_type", "course_code", "faculty_id", "room", "created_at", "updated_at"}).
		AddRow("s1", "monday", 1, "09:00", "10:00", "class", "CS101", "f1", "Lab-1", time.Now(), time.Now())
}

func TestTimetableRepositoryEnsureDay(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("INSERT INTO timetable_days").
		WithArgs(sqlmock.AnyArg(), "monday", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day_of_week, created_at, updated_at FROM timetable_days WHERE day_of_week = $1")).
		WithArgs("monday").
		WillReturnRows(dayRows())

	sched, err := repo.EnsureDay(context.Background(), "monday")
	require.NoError(t, err)
	assert.Equal(t, "monday", sched.DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindDay(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day_of_week, created_at, updated_at FROM timetable_days WHERE day_of_week = $1")).
		WithArgs("monday").
		WillReturnRows(dayRows())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE day_of_week = $1 ORDER BY period ASC")).
		WithArgs("monday").
		WillReturnRows(slotRows())

	sched, err := repo.FindDay(context.Background(), "monday")
	require.NoError(t, err)
	require.Len(t, sched.Slots, 1)
	assert.Equal(t, 1, sched.Slots[0].Period)
	assert.Equal(t, "CS101", *sched.Slots[0].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindDayMissing(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery("FROM timetable_days").
		WithArgs("sunday").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindDay(context.Background(), "sunday")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestTimetableRepositoryInsertSlot(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO timetable_slots").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE timetable_days SET updated_at").
		WithArgs(sqlmock.AnyArg(), "monday").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	slot := &models.Slot{DayOfWeek: "monday", Period: 1, StartTime: "09:00", EndTime: "10:00", Type: "class"}
	require.NoError(t, repo.InsertSlot(context.Background(), slot))
	assert.NotEmpty(t, slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateSlot(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	room := "202"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_slots SET room = $1, updated_at = $2 WHERE day_of_week = $3 AND period = $4")).
		WithArgs("202", sqlmock.AnyArg(), "monday", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE timetable_days SET updated_at").
		WithArgs(sqlmock.AnyArg(), "monday").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSlot(context.Background(), "monday", 1, models.SlotUpdate{Room: &room}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateSlotMissing(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	room := "202"
	mock.ExpectExec("UPDATE timetable_slots SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSlot(context.Background(), "monday", 9, models.SlotUpdate{Room: &room})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestTimetableRepositoryDeleteSlot(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_slots WHERE day_of_week = $1 AND period = $2")).
		WithArgs("monday", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE timetable_days SET updated_at").
		WithArgs(sqlmock.AnyArg(), "monday").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteSlot(context.Background(), "monday", 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteSlotMissing(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("DELETE FROM timetable_slots").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteSlot(context.Background(), "monday", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestTimetableRepositoryListSlotsByRoom(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE room = $1 AND day_of_week = $2 ORDER BY period ASC")).
		WithArgs("Lab-1", "monday").
		WillReturnRows(slotRows())

	slots, err := repo.ListSlotsByRoom(context.Background(), "Lab-1", "monday")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Lab-1", *slots[0].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListDays(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day_of_week, created_at, updated_at FROM timetable_days WHERE 1=1 ORDER BY day_of_week ASC LIMIT 50 OFFSET 0")).
		WillReturnRows(dayRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetable_days WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE day_of_week = $1 ORDER BY period ASC")).
		WithArgs("monday").
		WillReturnRows(slotRows())

	days, total, err := repo.ListDays(context.Background(), models.TimetableFilter{})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 1, total)
	assert.Len(t, days[0].Slots, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
