package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.October, day, hour, minute, 0, 0, time.Local)
}

// TestAlarmClone verifies that Clone returns an independent copy and handles nil safely.
func TestAlarmClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Alarm)(nil).Clone())

	a := &Alarm{ID: "a-1", TriggerTime: at(28, 8, 0), IsEnabled: true, Message: "Gym"}
	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)

	b.Message = "Changed"
	require.Equal(t, "Gym", a.Message)
}

// TestPatchApply checks that only supplied fields change and time changes are reported.
func TestPatchApply(t *testing.T) {
	t.Parallel()

	a := Alarm{ID: "a-1", TriggerTime: at(28, 8, 0), IsEnabled: true, Message: "Gym"}

	require.True(t, Patch{}.IsEmpty())

	msg := "X"
	changed := Patch{Message: &msg}.Apply(&a)
	require.False(t, changed)
	require.Equal(t, "X", a.Message)
	require.Equal(t, "a-1", a.ID)
	require.Equal(t, at(28, 8, 0), a.TriggerTime)

	same := at(28, 8, 0)
	require.False(t, Patch{TriggerTime: &same}.Apply(&a))

	later := at(28, 9, 0)
	repeat, enabled, snooze := true, false, true
	changed = Patch{TriggerTime: &later, RepeatDaily: &repeat, IsEnabled: &enabled, SnoozeActive: &snooze}.Apply(&a)
	require.True(t, changed)
	require.Equal(t, later, a.TriggerTime)
	require.True(t, a.RepeatDaily)
	require.False(t, a.IsEnabled)
	require.True(t, a.SnoozeActive)
}

// TestClassify covers the three statuses and the date-blind comparison.
func TestClassify(t *testing.T) {
	t.Parallel()

	alarm := at(28, 8, 0)

	require.Equal(t, StatusActive, Classify(alarm, at(28, 8, 0)))
	require.Equal(t, StatusActive, Classify(alarm, at(28, 8, 0).Add(59*time.Second)))
	require.Equal(t, StatusPast, Classify(alarm, at(28, 8, 1)))
	require.Equal(t, StatusUpcoming, Classify(alarm, at(28, 7, 59)))

	// Yesterday's alarm with a later time of day is still upcoming.
	require.Equal(t, StatusUpcoming, Classify(at(27, 23, 0), at(28, 0, 0)))

	// Pure: repeated calls agree.
	require.Equal(t, Classify(alarm, at(28, 12, 0)), Classify(alarm, at(28, 12, 0)))
}

// TestCategorize groups enabled alarms and skips disabled ones.
func TestCategorize(t *testing.T) {
	t.Parallel()

	alarms := []Alarm{
		{ID: "past", TriggerTime: at(28, 7, 0), IsEnabled: true},
		{ID: "active", TriggerTime: at(28, 8, 0), IsEnabled: true},
		{ID: "disabled", TriggerTime: at(28, 9, 0), IsEnabled: false},
		{ID: "upcoming", TriggerTime: at(28, 23, 0), IsEnabled: true},
	}

	board := Categorize(alarms, at(28, 8, 0))

	require.Equal(t, 3, board.Len())
	require.Len(t, board.Active, 1)
	require.Equal(t, "active", board.Active[0].ID)
	require.Len(t, board.Upcoming, 1)
	require.Equal(t, "upcoming", board.Upcoming[0].ID)
	require.Len(t, board.Past, 1)
	require.Equal(t, "past", board.Past[0].ID)
}
