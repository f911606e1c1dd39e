package alarm

import (
	"time"

	"github.com/oshokin/vlarm/internal/timecalc"
)

// Status places an alarm relative to a reference time of day.
type Status string

const (
	// StatusPast means the alarm's time of day is earlier than the reference.
	StatusPast Status = "past"
	// StatusActive means both fall in the same minute of the day.
	StatusActive Status = "active"
	// StatusUpcoming means the alarm's time of day is later than the reference.
	StatusUpcoming Status = "upcoming"
)

// Classify compares hour and minute of triggerTime and reference and ignores the date.
// An alarm from yesterday with a later time of day reads as Upcoming.
func Classify(triggerTime, reference time.Time) Status {
	alarmMinute := timecalc.MinuteOfDay(triggerTime)
	referenceMinute := timecalc.MinuteOfDay(reference)

	switch {
	case alarmMinute < referenceMinute:
		return StatusPast
	case alarmMinute == referenceMinute:
		return StatusActive
	default:
		return StatusUpcoming
	}
}

// Status classifies the alarm against reference.
func (a *Alarm) Status(reference time.Time) Status {
	return Classify(a.TriggerTime, reference)
}

// Board groups enabled alarms by status, in the order the input lists them.
type Board struct {
	Active   []Alarm
	Upcoming []Alarm
	Past     []Alarm
}

// Len returns the number of alarms on the board.
func (b Board) Len() int {
	return len(b.Active) + len(b.Upcoming) + len(b.Past)
}

// Categorize builds a Board from alarms; disabled alarms are left out.
func Categorize(alarms []Alarm, reference time.Time) Board {
	var board Board

	for _, a := range alarms {
		if !a.IsEnabled {
			continue
		}

		switch a.Status(reference) {
		case StatusActive:
			board.Active = append(board.Active, a)
		case StatusUpcoming:
			board.Upcoming = append(board.Upcoming, a)
		case StatusPast:
			board.Past = append(board.Past, a)
		}
	}

	return board
}
