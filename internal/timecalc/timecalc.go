// Package timecalc turns "now plus a delta" and "a 12-hour clock reading"
// into absolute instants in the location of the reference time.
package timecalc

import (
	"math"
	"time"
)

// Meridiem is the AM/PM marker attached to a 12-hour clock reading.
type Meridiem int

const (
	// MeridiemNone means no marker was given; the afternoon bias applies.
	MeridiemNone Meridiem = iota
	// MeridiemAM forces the morning half of the day.
	MeridiemAM
	// MeridiemPM forces the afternoon half of the day.
	MeridiemPM
)

// String implements fmt.Stringer.
func (m Meridiem) String() string {
	switch m {
	case MeridiemAM:
		return "am"
	case MeridiemPM:
		return "pm"
	default:
		return "none"
	}
}

const (
	minutesPerHour = 60
	hoursPerDay    = 24
	noon           = 12

	// maxMinutes is the largest delta a time.Duration can hold.
	maxMinutes = math.MaxInt64 / int64(time.Minute)
)

// AfterMinutes returns now shifted by delta minutes.
// It reports false when delta is not positive or overflows a time.Duration.
func AfterMinutes(now time.Time, delta int) (time.Time, bool) {
	if delta <= 0 || int64(delta) > maxMinutes {
		return time.Time{}, false
	}

	return now.Add(time.Duration(delta) * time.Minute), true
}

// AfterHours is AfterMinutes for a delta expressed in hours.
func AfterHours(now time.Time, delta int) (time.Time, bool) {
	if delta <= 0 || int64(delta) > maxMinutes/minutesPerHour {
		return time.Time{}, false
	}

	return AfterMinutes(now, delta*minutesPerHour)
}

// Hour24 converts a 12-hour clock hour into 0-23.
//
// PM adds twelve hours unless the hour is 12; AM maps 12 to 0. Without a
// marker the hour is moved to the afternoon when now is already past noon.
// It reports false when hour is outside 1-12.
func Hour24(hour int, meridiem Meridiem, now time.Time) (int, bool) {
	if hour < 1 || hour > noon {
		return 0, false
	}

	switch meridiem {
	case MeridiemPM:
		if hour != noon {
			return hour + noon, true
		}
	case MeridiemAM:
		if hour == noon {
			return 0, true
		}
	case MeridiemNone:
		if hour < noon && now.Hour() >= noon {
			return hour + noon, true
		}
	}

	return hour, true
}

// NextOccurrence returns the instant on now's calendar day at hour:minute,
// moved to the following day when that instant is strictly before now.
// It reports false when hour is outside 0-23 or minute outside 0-59.
func NextOccurrence(now time.Time, hour, minute int) (time.Time, bool) {
	if hour < 0 || hour >= hoursPerDay || minute < 0 || minute >= minutesPerHour {
		return time.Time{}, false
	}

	year, month, day := now.Date()

	at := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
	if at.Before(now) {
		// Calendar arithmetic keeps the wall-clock time across DST changes.
		at = time.Date(year, month, day+1, hour, minute, 0, 0, now.Location())
	}

	return at, true
}

// At combines Hour24 and NextOccurrence for a 12-hour clock reading.
func At(now time.Time, hour, minute int, meridiem Meridiem) (time.Time, bool) {
	h, ok := Hour24(hour, meridiem, now)
	if !ok {
		return time.Time{}, false
	}

	return NextOccurrence(now, h, minute)
}

// MinuteOfDay returns the number of minutes since local midnight of t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*minutesPerHour + t.Minute()
}
