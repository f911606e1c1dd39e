package speech

import (
	"context"
	"errors"
)

// Content types produced by the synthesizers.
const (
	ContentTypeMPEG = "audio/mpeg"
	ContentTypeWAV  = "audio/wav"
)

var (
	// ErrSynthesisUnavailable is returned when every synthesizer failed.
	ErrSynthesisUnavailable = errors.New("speech synthesis unavailable")
	// ErrNotConfigured is returned by a synthesizer or player missing its settings.
	ErrNotConfigured = errors.New("speech is not configured")
)

// Audio is one synthesized utterance.
type Audio struct {
	// Text is what the audio says.
	Text string
	// Data holds the encoded audio.
	Data []byte
	// ContentType describes Data, for example audio/mpeg.
	ContentType string
	// Synthesizer names the producer.
	Synthesizer string
}

// Synthesizer converts text into audio.
type Synthesizer interface {
	// Name identifies the synthesizer in logs and metrics.
	Name() string
	// Synthesize returns the audio for text.
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// Player plays audio until it ends or ctx is cancelled.
type Player interface {
	Play(ctx context.Context, audio *Audio) error
}
