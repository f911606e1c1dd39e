// Package interpreter turns a finalized transcript into an alarm intent by
// trying a fixed, ordered list of pattern rules.
package interpreter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/vlarm/internal/reminder"
	"github.com/oshokin/vlarm/internal/timecalc"
)

const (
	// DefaultTaskMessage is used by the relative and clock rules when no task was said.
	DefaultTaskMessage = "Complete your task"
	// DefaultWakeUpMessage is used by the wake-up rule when no task was said.
	DefaultWakeUpMessage = "Wake up"
	// DefaultDelay schedules a task that came without a time.
	DefaultDelay = 15 * time.Minute
)

//nolint:gochecknoglobals // Compiled once, read-only.
var (
	relativePattern = regexp.MustCompile(
		`(?:in|for)\s+(\d+)\s+(minutes|minute|mins|min|hours|hour|hrs|hr)(?:\s+from\s+now)?`)
	clockPattern = regexp.MustCompile(
		`at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm|o'?clock)`)
	wakeUpPattern = regexp.MustCompile(
		`(?:wake\s+me\s+up|set\s+alarm|alarm)\s+(?:at|for)\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
	pmToken = regexp.MustCompile(`(?:^|[^a-z])pm\b`)
	amToken = regexp.MustCompile(`(?:^|[^a-z])am\b`)
)

// utterance is what every rule sees.
type utterance struct {
	// text is lowercased and trimmed.
	text string
	// task is the extracted reminder, possibly empty.
	task string
	now  time.Time
}

// rule returns a reminder and true when it understood the utterance.
type rule func(u utterance) (TimedReminder, bool)

// Interpreter applies its rules in order; the first match wins.
type Interpreter struct {
	rules []rule
}

// New returns an Interpreter with the relative, clock and wake-up rules in that order.
func New() *Interpreter {
	return &Interpreter{
		rules: []rule{matchRelative, matchClock, matchWakeUp},
	}
}

// Interpret classifies text as observed at now. It never fails: an utterance
// nothing understood comes back as Unparsed.
func (i *Interpreter) Interpret(text string, now time.Time) Result {
	lowered := strings.TrimSpace(strings.ToLower(text))

	u := utterance{
		text: lowered,
		task: reminder.Extract(lowered),
		now:  now,
	}

	for _, r := range i.rules {
		if res, ok := r(u); ok {
			return res
		}
	}

	if u.task != "" {
		return TimedReminder{
			TriggerTime: now.Add(DefaultDelay),
			Message:     u.task,
			MatchedRule: RuleMessageOnly,
		}
	}

	return Unparsed{Message: u.task}
}

func matchRelative(u utterance) (TimedReminder, bool) {
	m := relativePattern.FindStringSubmatch(u.text)
	if m == nil {
		return TimedReminder{}, false
	}

	value, err := strconv.Atoi(m[1])
	if err != nil {
		return TimedReminder{}, false
	}

	var (
		at time.Time
		ok bool
	)

	if strings.HasPrefix(m[2], "h") {
		at, ok = timecalc.AfterHours(u.now, value)
	} else {
		at, ok = timecalc.AfterMinutes(u.now, value)
	}

	if !ok {
		return TimedReminder{}, false
	}

	return TimedReminder{
		TriggerTime: at,
		Message:     orDefault(u.task, DefaultTaskMessage),
		MatchedRule: RuleRelative,
	}, true
}

// matchClock only fires when a marker follows the hour; "o'clock" counts as
// no meridiem and leaves the afternoon bias in charge.
func matchClock(u utterance) (TimedReminder, bool) {
	m := clockPattern.FindStringSubmatch(u.text)
	if m == nil {
		return TimedReminder{}, false
	}

	hour, minute, ok := parseClock(m[1], m[2])
	if !ok {
		return TimedReminder{}, false
	}

	meridiem := timecalc.MeridiemNone

	switch m[3] {
	case "am":
		meridiem = timecalc.MeridiemAM
	case "pm":
		meridiem = timecalc.MeridiemPM
	}

	at, ok := timecalc.At(u.now, hour, minute, meridiem)
	if !ok {
		return TimedReminder{}, false
	}

	return TimedReminder{
		TriggerTime: at,
		Message:     orDefault(u.task, DefaultTaskMessage),
		MatchedRule: RuleClock,
	}, true
}

// matchWakeUp looks for the meridiem anywhere in the utterance, not only
// next to the hour.
func matchWakeUp(u utterance) (TimedReminder, bool) {
	m := wakeUpPattern.FindStringSubmatch(u.text)
	if m == nil {
		return TimedReminder{}, false
	}

	hour, minute, ok := parseClock(m[1], m[2])
	if !ok {
		return TimedReminder{}, false
	}

	at, ok := timecalc.At(u.now, hour, minute, scanMeridiem(u.text))
	if !ok {
		return TimedReminder{}, false
	}

	return TimedReminder{
		TriggerTime: at,
		Message:     orDefault(u.task, DefaultWakeUpMessage),
		MatchedRule: RuleWakeUp,
	}, true
}

// scanMeridiem prefers pm over am when both appear.
func scanMeridiem(text string) timecalc.Meridiem {
	switch {
	case pmToken.MatchString(text):
		return timecalc.MeridiemPM
	case amToken.MatchString(text):
		return timecalc.MeridiemAM
	default:
		return timecalc.MeridiemNone
	}
}

func parseClock(hourText, minuteText string) (int, int, bool) {
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return 0, 0, false
	}

	minute := 0
	if minuteText != "" {
		if minute, err = strconv.Atoi(minuteText); err != nil {
			return 0, 0, false
		}
	}

	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, 0, false
	}

	return hour, minute, true
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
