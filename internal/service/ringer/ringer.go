// Package ringer speaks alarms when they come due.
package ringer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jmhodges/clock"

	"github.com/oshokin/vlarm/internal/config"
	domain "github.com/oshokin/vlarm/internal/domain/alarm"
	"github.com/oshokin/vlarm/internal/logger"
	"github.com/oshokin/vlarm/internal/metrics"
)

// Ring kinds used in logs and metrics.
const (
	KindOnce    = "once"
	KindDaily   = "daily"
	KindSnoozed = "snoozed"
)

// dayLayout keys the last ring of a repeat-daily alarm.
const dayLayout = "2006-01-02"

// Alarms lists the collection.
type Alarms interface {
	List(ctx context.Context) []domain.Alarm
}

// Speaker says the reminder.
type Speaker interface {
	Speak(ctx context.Context, text string) <-chan error
}

// Ringer checks the collection against the clock and speaks due alarms.
//
// A one-shot or snoozed alarm is due when its trigger time has passed by no
// more than the missed window. A repeat-daily alarm is due while its status
// is Active, once per calendar day.
type Ringer struct {
	alarms       Alarms
	speaker      Speaker
	clock        clock.Clock
	metrics      *metrics.Metrics
	missedWindow time.Duration

	mu sync.Mutex
	// rungAt holds the trigger time each one-shot alarm last rang for.
	rungAt map[string]time.Time
	// rungOn holds the day each repeat-daily alarm last rang on.
	rungOn map[string]string
}

// Option configures a Ringer.
type Option func(*Ringer)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(r *Ringer) {
		r.clock = c
	}
}

// WithMetrics counts rings.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Ringer) {
		r.metrics = m
	}
}

// WithMissedWindow sets how late a one-shot alarm may still ring.
func WithMissedWindow(d time.Duration) Option {
	return func(r *Ringer) {
		if d > 0 {
			r.missedWindow = d
		}
	}
}

// New returns a Ringer over alarms that speaks through speaker.
func New(alarms Alarms, speaker Speaker, opts ...Option) *Ringer {
	r := &Ringer{
		alarms:       alarms,
		speaker:      speaker,
		clock:        clock.New(),
		missedWindow: config.DefaultMissedWindow,
		rungAt:       make(map[string]time.Time),
		rungOn:       make(map[string]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run checks every tick until ctx is done.
func (r *Ringer) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = config.DefaultTick
	}

	ctx = logger.WithName(ctx, "ringer")

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	logger.InfoKV(ctx, "Ringer started", "tick", tick, "missed_window", r.missedWindow)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Ringer stopped")

			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}

// Check rings every alarm due now and returns them. Alarms due in the same
// check are spoken as one utterance so none cancels another.
func (r *Ringer) Check(ctx context.Context) []domain.Alarm {
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		list  = r.alarms.List(ctx)
		rung  []domain.Alarm
		texts []string
	)

	for _, a := range list {
		kind, due := r.due(&a, now)
		if !due {
			continue
		}

		r.metrics.ObserveRing(kind)
		logger.InfoKV(ctx, "Alarm ringing", "id", a.ID, "kind", kind, "message", a.Message)

		rung = append(rung, a)
		texts = append(texts, RingText(a.Message))
	}

	r.forgetMissing(list)

	if len(rung) > 0 {
		r.speak(ctx, rung, strings.Join(texts, " "))
	}

	return rung
}

// forgetMissing drops ring records of alarms no longer in the collection.
func (r *Ringer) forgetMissing(list []domain.Alarm) {
	live := make(map[string]struct{}, len(list))
	for i := range list {
		live[list[i].ID] = struct{}{}
	}

	for id := range r.rungAt {
		if _, ok := live[id]; !ok {
			delete(r.rungAt, id)
		}
	}

	for id := range r.rungOn {
		if _, ok := live[id]; !ok {
			delete(r.rungOn, id)
		}
	}
}

// due also records the ring, so each alarm rings once per occurrence.
func (r *Ringer) due(a *domain.Alarm, now time.Time) (string, bool) {
	if !a.IsEnabled {
		return "", false
	}

	if a.RepeatDaily && !a.SnoozeActive {
		day := now.Format(dayLayout)
		if a.Status(now) != domain.StatusActive || r.rungOn[a.ID] == day {
			return "", false
		}

		r.rungOn[a.ID] = day

		return KindDaily, true
	}

	late := now.Sub(a.TriggerTime)
	if late < 0 || late > r.missedWindow {
		return "", false
	}

	if last, ok := r.rungAt[a.ID]; ok && last.Equal(a.TriggerTime) {
		return "", false
	}

	r.rungAt[a.ID] = a.TriggerTime

	if a.SnoozeActive {
		return KindSnoozed, true
	}

	return KindOnce, true
}

func (r *Ringer) speak(ctx context.Context, rung []domain.Alarm, text string) {
	ids := make([]string, 0, len(rung))
	for i := range rung {
		ids = append(ids, rung[i].ID)
	}

	done := r.speaker.Speak(ctx, text)

	go func() {
		if err := <-done; err != nil {
			logger.WarnKV(ctx, "Alarms could not be spoken", "ids", ids, "error", err)
		}
	}()
}

// RingText is what the assistant says when an alarm rings.
func RingText(message string) string {
	if message == "" {
		return "Hey, it's time."
	}

	return "Hey, time to " + message + "."
}
