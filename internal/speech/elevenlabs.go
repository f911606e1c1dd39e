package speech

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/oshokin/vlarm/internal/config"
	"github.com/oshokin/vlarm/internal/version"
)

// voiceSettings are sent with every request.
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type textToSpeechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// errNoAudio is returned for a successful response with an empty body.
var errNoAudio = errors.New("text-to-speech API returned no audio")

//nolint:gochecknoglobals // Read-only.
var defaultVoiceSettings = voiceSettings{
	Stability:       0.5,
	SimilarityBoost: 0.75,
	Style:           0,
	UseSpeakerBoost: true,
}

// ElevenLabs synthesizes speech through the ElevenLabs text-to-speech API.
type ElevenLabs struct {
	httpClient *resty.Client
	apiKey     string
	voiceID    string
	modelID    string
}

// NewElevenLabs creates a client for the API described by cfg.
func NewElevenLabs(cfg config.SpeechConfig, timeout time.Duration) *ElevenLabs {
	client := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", ContentTypeMPEG).
		SetHeader("User-Agent", version.UserAgent())

	return &ElevenLabs{
		httpClient: client,
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		modelID:    cfg.ModelID,
	}
}

// Name implements Synthesizer.
func (e *ElevenLabs) Name() string {
	return "elevenlabs"
}

// Synthesize implements Synthesizer.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (*Audio, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrNotConfigured)
	}

	request := textToSpeechRequest{
		Text:          text,
		ModelID:       e.modelID,
		VoiceSettings: defaultVoiceSettings,
	}

	resp, err := e.httpClient.R().
		SetContext(ctx).
		SetHeader("xi-api-key", e.apiKey).
		SetPathParam("voice", e.voiceID).
		SetBody(request).
		Post("/text-to-speech/{voice}")
	if err != nil {
		return nil, fmt.Errorf("call text-to-speech API: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("text-to-speech API returned %s", resp.Status())
	}

	if len(resp.Body()) == 0 {
		return nil, errNoAudio
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = ContentTypeMPEG
	}

	return &Audio{
		Text:        text,
		Data:        resp.Body(),
		ContentType: contentType,
		Synthesizer: e.Name(),
	}, nil
}
