package interpreter

import "time"

// Rule names a pattern family of the interpreter.
type Rule string

const (
	// RuleRelative matches "in 20 minutes" and similar.
	RuleRelative Rule = "relative"
	// RuleClock matches "at 6:30 pm" and "at 7 o'clock".
	RuleClock Rule = "clock"
	// RuleWakeUp matches "wake me up at 7" and "set alarm for 7".
	RuleWakeUp Rule = "wake_up"
	// RuleMessageOnly schedules a task that came without any time.
	RuleMessageOnly Rule = "message_only"
	// RuleNone marks an utterance no rule understood.
	RuleNone Rule = "none"
)

// Result is either a TimedReminder or Unparsed.
type Result interface {
	// Rule reports which rule produced the result.
	Rule() Rule

	isResult()
}

// TimedReminder is a successful interpretation.
type TimedReminder struct {
	TriggerTime time.Time
	Message     string
	MatchedRule Rule
}

// Rule implements Result.
func (r TimedReminder) Rule() Rule { return r.MatchedRule }

func (TimedReminder) isResult() {}

// Unparsed means neither a time nor a task was found. The caller should
// ask the user to repeat.
type Unparsed struct {
	Message string
}

// Rule implements Result.
func (Unparsed) Rule() Rule { return RuleNone }

func (Unparsed) isResult() {}
