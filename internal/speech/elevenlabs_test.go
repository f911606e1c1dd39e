package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/vlarm/internal/config"
)

func newTestElevenLabs(t *testing.T, handler http.HandlerFunc, apiKey string) *ElevenLabs {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewElevenLabs(config.SpeechConfig{
		APIBaseURL: server.URL,
		APIKey:     apiKey,
		VoiceID:    "voice-1",
		ModelID:    config.DefaultModelID,
	}, time.Second)
}

// TestElevenLabsSynthesize verifies the request shape and the returned audio.
func TestElevenLabsSynthesize(t *testing.T) {
	t.Parallel()

	type captured struct {
		path   string
		key    string
		method string
		body   textToSpeechRequest
	}

	requests := make(chan captured, 1)

	e := newTestElevenLabs(t, func(w http.ResponseWriter, r *http.Request) {
		c := captured{
			path:   r.URL.Path,
			key:    r.Header.Get("xi-api-key"),
			method: r.Method,
		}

		if err := json.NewDecoder(r.Body).Decode(&c.body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		requests <- c

		w.Header().Set("Content-Type", ContentTypeMPEG)
		_, _ = w.Write([]byte("mp3-bytes"))
	}, "secret")

	audio, err := e.Synthesize(context.Background(), "Wake up")
	require.NoError(t, err)

	got := <-requests
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "/text-to-speech/voice-1", got.path)
	require.Equal(t, "secret", got.key)
	require.Equal(t, "Wake up", got.body.Text)
	require.Equal(t, config.DefaultModelID, got.body.ModelID)
	require.Equal(t, defaultVoiceSettings, got.body.VoiceSettings)

	require.Equal(t, []byte("mp3-bytes"), audio.Data)
	require.Equal(t, ContentTypeMPEG, audio.ContentType)
	require.Equal(t, "elevenlabs", audio.Synthesizer)
	require.Equal(t, "Wake up", audio.Text)
}

// TestElevenLabsErrors covers HTTP failures, empty bodies and a missing key.
func TestElevenLabsErrors(t *testing.T) {
	t.Parallel()

	unauthorized := newTestElevenLabs(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}, "wrong")

	_, err := unauthorized.Synthesize(context.Background(), "hi")
	require.ErrorContains(t, err, "401")

	empty := newTestElevenLabs(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, "secret")

	_, err = empty.Synthesize(context.Background(), "hi")
	require.ErrorIs(t, err, errNoAudio)

	noKey := newTestElevenLabs(t, func(http.ResponseWriter, *http.Request) {
		t.Error("request sent without an API key")
	}, "")

	_, err = noKey.Synthesize(context.Background(), "hi")
	require.ErrorIs(t, err, ErrNotConfigured)
}
