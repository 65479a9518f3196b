package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalDay(t *testing.T) {
	day, ok := CanonicalDay("Monday")
	assert.True(t, ok)
	assert.Equal(t, "monday", day)

	day, ok = CanonicalDay("  SUNDAY ")
	assert.True(t, ok)
	assert.Equal(t, "sunday", day)

	_, ok = CanonicalDay("funday")
	assert.False(t, ok)

	_, ok = CanonicalDay("")
	assert.False(t, ok)
}

func TestValidClock(t *testing.T) {
	valid := []string{"00:00", "9:00", "09:30", "19:59", "23:59"}
	for _, v := range valid {
		assert.True(t, ValidClock(v), v)
	}

	invalid := []string{"24:00", "12:60", "9am", "9:5", "130:00", ""}
	for _, v := range invalid {
		assert.False(t, ValidClock(v), v)
	}
}

func TestClockMinutes(t *testing.T) {
	assert.Equal(t, 0, ClockMinutes("00:00"))
	assert.Equal(t, 540, ClockMinutes("9:00"))
	assert.Equal(t, 1439, ClockMinutes("23:59"))
}

func TestTeachingDaysExcludeSunday(t *testing.T) {
	assert.Len(t, Weekdays, 7)
	assert.Len(t, TeachingDays, 6)
	assert.NotContains(t, TeachingDays, "sunday")
	assert.Equal(t, "monday", TeachingDays[0])
}

func TestSlotPredicates(t *testing.T) {
	room := "Lab-1"
	faculty := "f1"
	slot := Slot{Room: &room, FacultyID: &faculty}

	assert.True(t, slot.InRoom("Lab-1"))
	assert.False(t, slot.InRoom("Lab-2"))
	assert.True(t, slot.TaughtBy("f1"))
	assert.False(t, slot.TaughtBy("f2"))

	empty := Slot{}
	assert.False(t, empty.InRoom("Lab-1"))
	assert.False(t, empty.TaughtBy("f1"))
}

func TestSlotUpdateIsZero(t *testing.T) {
	assert.True(t, SlotUpdate{}.IsZero())

	room := "101"
	assert.False(t, SlotUpdate{Room: &room}.IsZero())
}
