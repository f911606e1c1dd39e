package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmhodges/clock"

	domain "github.com/oshokin/vlarm/internal/domain/alarm"
	"github.com/oshokin/vlarm/internal/interpreter"
	"github.com/oshokin/vlarm/internal/logger"
	"github.com/oshokin/vlarm/internal/metrics"
)

const (
	// RetryReply is spoken when an utterance could not be understood.
	RetryReply = "Sorry, I didn't catch that. Could you repeat? " +
		"For example, say 'Remind me in 20 minutes to finish my homework.'"
	// TranscriptionFailedReply is spoken when the transcription service failed.
	TranscriptionFailedReply = "Sorry, I couldn't hear you. Please try again."

	// replyTimeLayout renders times the way a person says them, e.g. 3:04 PM.
	replyTimeLayout = "3:04 PM"
)

// ErrNoTranscript is returned by ForceStop when nothing was heard.
var ErrNoTranscript = errors.New("no transcript captured")

// TranscriptEvent is one update from the transcription service.
type TranscriptEvent struct {
	// Text is the best transcription so far.
	Text string
	// IsFinal marks the last event of an utterance.
	IsFinal bool
}

// Alarms is the part of the collection manager a session needs.
type Alarms interface {
	Create(ctx context.Context, a domain.Alarm) (*domain.Alarm, error)
}

// Speaker says replies. A new Speak call replaces the one in progress.
type Speaker interface {
	Speak(ctx context.Context, text string) <-chan error
	Stop()
}

// Outcome is what a processed utterance led to.
type Outcome struct {
	// Result is the interpretation.
	Result interpreter.Result
	// Alarm is the created alarm, nil when nothing was scheduled.
	Alarm *domain.Alarm
	// Reply is the text spoken back.
	Reply string
	// Spoken receives the completion of the reply, see speech.Speaker.Speak.
	Spoken <-chan error
}

// Session owns the transcript of the utterance being captured.
type Session struct {
	interpreter *interpreter.Interpreter
	alarms      Alarms
	speaker     Speaker
	clock       clock.Clock
	metrics     *metrics.Metrics

	mu sync.Mutex
	// partial is the latest non-final transcript.
	partial string
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithMetrics counts interpreted utterances.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession returns a session that stores alarms in alarms and answers through speaker.
func NewSession(alarms Alarms, speaker Speaker, opts ...Option) *Session {
	s := &Session{
		interpreter: interpreter.New(),
		alarms:      alarms,
		speaker:     speaker,
		clock:       clock.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// HandleTranscript records partial events and processes final ones.
// It returns a nil Outcome for partial events.
func (s *Session) HandleTranscript(ctx context.Context, event TranscriptEvent) (*Outcome, error) {
	if !event.IsFinal {
		s.mu.Lock()
		s.partial = event.Text
		s.mu.Unlock()

		return nil, nil //nolint:nilnil // Nothing to report until the utterance is final.
	}

	return s.Process(ctx, event.Text)
}

// ForceStop ends capture early and processes the last partial transcript.
func (s *Session) ForceStop(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	text := s.partial
	s.partial = ""
	s.mu.Unlock()

	if text == "" {
		logger.Info(ctx, "Capture stopped before anything was heard")

		return nil, ErrNoTranscript
	}

	return s.Process(ctx, text)
}

// Process interprets text, creates the alarm when one was understood and
// speaks the reply. Only a failure to store the alarm is returned as an error.
func (s *Session) Process(ctx context.Context, text string) (*Outcome, error) {
	ctx = logger.WithName(ctx, "voice")

	s.mu.Lock()
	s.partial = ""
	s.mu.Unlock()

	result := s.interpreter.Interpret(text, s.clock.Now())

	reminder, ok := result.(interpreter.TimedReminder)
	if !ok {
		s.metrics.ObserveUtterance(string(result.Rule()), metrics.OutcomeUnparsed)
		logger.InfoKV(ctx, "Utterance not understood", "text", text)

		return &Outcome{
			Result: result,
			Reply:  RetryReply,
			Spoken: s.speaker.Speak(ctx, RetryReply),
		}, nil
	}

	created, err := s.alarms.Create(ctx, domain.Alarm{
		TriggerTime: reminder.TriggerTime,
		IsEnabled:   true,
		Message:     reminder.Message,
	})
	if err != nil {
		s.metrics.ObserveUtterance(string(reminder.Rule()), metrics.OutcomeFailed)

		return nil, fmt.Errorf("create alarm: %w", err)
	}

	s.metrics.ObserveUtterance(string(reminder.Rule()), metrics.OutcomeScheduled)
	logger.InfoKV(ctx, "Utterance scheduled",
		"text", text,
		"rule", reminder.Rule(),
		"id", created.ID,
		"trigger_time", created.TriggerTime)

	reply := ConfirmationReply(created.Message, created.TriggerTime.Format(replyTimeLayout))

	return &Outcome{
		Result: result,
		Alarm:  created,
		Reply:  reply,
		Spoken: s.speaker.Speak(ctx, reply),
	}, nil
}

// TranscriptionFailed reports a transcription service error to the user.
// Cancellation is part of a normal stop and stays silent.
func (s *Session) TranscriptionFailed(ctx context.Context, err error) *Outcome {
	s.mu.Lock()
	s.partial = ""
	s.mu.Unlock()

	if errors.Is(err, context.Canceled) {
		return nil
	}

	logger.WarnKV(logger.WithName(ctx, "voice"), "Transcription failed", "error", err)

	return &Outcome{
		Result: interpreter.Unparsed{},
		Reply:  TranscriptionFailedReply,
		Spoken: s.speaker.Speak(ctx, TranscriptionFailedReply),
	}
}

// ConfirmationReply is spoken after an alarm was created.
func ConfirmationReply(message, at string) string {
	return fmt.Sprintf("Got it! I'll remind you to %s at %s.", message, at)
}
