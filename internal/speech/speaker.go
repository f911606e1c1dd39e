package speech

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/vlarm/internal/config"
	"github.com/oshokin/vlarm/internal/logger"
	"github.com/oshokin/vlarm/internal/metrics"
)

// Speaker plays one utterance at a time.
type Speaker struct {
	// synthesizers are tried in order until one succeeds.
	synthesizers []Synthesizer
	// player plays the synthesized audio.
	player Player
	// metrics counts fallbacks and synthesis time.
	metrics *metrics.Metrics

	// mu serializes starting and stopping utterances.
	mu sync.Mutex
	// current is the latest utterance, possibly finished.
	current *utterance
}

type utterance struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Speaker.
type Option func(*Speaker)

// WithMetrics reports synthesis outcomes to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Speaker) {
		s.metrics = m
	}
}

// NewSpeaker returns a Speaker that plays through player. A nil player logs instead.
func NewSpeaker(player Player, synthesizers []Synthesizer, opts ...Option) *Speaker {
	if player == nil {
		player = LogPlayer{}
	}

	s := &Speaker{
		synthesizers: synthesizers,
		player:       player,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewSpeakerFromConfig builds the ElevenLabs then local command chain described by cfg.
// The HTTP synthesizer is left out when no API key is set.
func NewSpeakerFromConfig(cfg config.SpeechConfig, timeout time.Duration, opts ...Option) (*Speaker, error) {
	var synthesizers []Synthesizer

	if cfg.APIKey != "" {
		synthesizers = append(synthesizers, NewElevenLabs(cfg, timeout))
	}

	if cfg.FallbackCommand != "" {
		local, err := NewCommandSynthesizer(cfg.FallbackCommand)
		if err != nil {
			return nil, fmt.Errorf("fallback synthesizer: %w", err)
		}

		synthesizers = append(synthesizers, local)
	}

	var player Player = LogPlayer{}

	if cfg.PlayerCommand != "" {
		commandPlayer, err := NewCommandPlayer(cfg.PlayerCommand)
		if err != nil {
			return nil, fmt.Errorf("player: %w", err)
		}

		player = commandPlayer
	}

	return NewSpeaker(player, synthesizers, opts...), nil
}

// Speak stops any utterance in progress and starts saying text in the
// background. The returned channel receives exactly one value: nil when the
// speech finished, context.Canceled when it was stopped or superseded, or
// the synthesis or playback error.
//
// The utterance outlives ctx; only Stop or the next Speak ends it early.
// ctx still provides the logger.
func (s *Speaker) Speak(ctx context.Context, text string) <-chan error {
	result := make(chan error, 1)

	s.mu.Lock()
	s.stopLocked()

	speakCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	u := &utterance{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.current = u
	s.mu.Unlock()

	go func() {
		defer close(u.done)
		defer cancel()

		err := s.say(speakCtx, text)
		if err != nil && speakCtx.Err() != nil {
			err = context.Canceled
		}

		result <- err
	}()

	return result
}

// Stop cancels the utterance in progress, if any, and waits for it to end.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
}

func (s *Speaker) stopLocked() {
	if s.current == nil {
		return
	}

	s.current.cancel()
	<-s.current.done
	s.current = nil
}

// say tries each synthesizer in turn. A playback failure also moves on to the
// next synthesizer, since its audio format may suit the player better.
func (s *Speaker) say(ctx context.Context, text string) error {
	ctx = logger.WithName(ctx, "speech")

	var lastErr error

	for _, synthesizer := range s.synthesizers {
		err := s.sayWith(ctx, synthesizer, text)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return err
		}

		lastErr = err

		s.metrics.ObserveSpeechFallback(synthesizer.Name())
		logger.WarnKV(ctx, "Speech failed, trying next synthesizer",
			"synthesizer", synthesizer.Name(),
			"error", err)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no synthesizers", ErrNotConfigured)
	}

	logger.ErrorKV(ctx, "Speech is unavailable", "text", text, "error", lastErr)

	return fmt.Errorf("%w: %w", ErrSynthesisUnavailable, lastErr)
}

func (s *Speaker) sayWith(ctx context.Context, synthesizer Synthesizer, text string) error {
	started := time.Now()
	audio, err := synthesizer.Synthesize(ctx, text)
	s.metrics.ObserveSynthesis(synthesizer.Name(), time.Since(started), err)

	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Speech synthesized",
		"synthesizer", synthesizer.Name(),
		"bytes", len(audio.Data))

	return s.player.Play(ctx, audio)
}
