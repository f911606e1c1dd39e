package alarm

import "time"

// Alarm is a scheduled spoken reminder.
type Alarm struct {
	// ID is assigned at creation and never changes.
	ID string
	// TriggerTime is when the alarm is due to ring.
	TriggerTime time.Time
	// IsEnabled excludes the alarm from ringing and from status boards when false.
	IsEnabled bool
	// Message is spoken at trigger time. It may be empty.
	Message string
	// RepeatDaily makes the time of day recur every day.
	RepeatDaily bool
	// SnoozeActive marks a deferred ring.
	SnoozeActive bool
}

// Clone returns a copy of the alarm; nil stays nil.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Patch lists the fields an edit changes. Nil fields are left untouched.
type Patch struct {
	TriggerTime  *time.Time
	Message      *string
	RepeatDaily  *bool
	IsEnabled    *bool
	SnoozeActive *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.TriggerTime == nil &&
		p.Message == nil &&
		p.RepeatDaily == nil &&
		p.IsEnabled == nil &&
		p.SnoozeActive == nil
}

// Apply writes the patch into a and reports whether the trigger time changed.
func (p Patch) Apply(a *Alarm) bool {
	timeChanged := false

	if p.TriggerTime != nil && !p.TriggerTime.Equal(a.TriggerTime) {
		a.TriggerTime = *p.TriggerTime
		timeChanged = true
	}

	if p.Message != nil {
		a.Message = *p.Message
	}

	if p.RepeatDaily != nil {
		a.RepeatDaily = *p.RepeatDaily
	}

	if p.IsEnabled != nil {
		a.IsEnabled = *p.IsEnabled
	}

	if p.SnoozeActive != nil {
		a.SnoozeActive = *p.SnoozeActive
	}

	return timeChanged
}
