package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/vlarm/internal/logger"
)

// Config holds the settings shared by the vlarm server and CLI.
type Config struct {
	// ServerAddress is the gRPC address the server listens on and clients dial.
	ServerAddress string `yaml:"server_addr"`
	// AlarmsFile is the path of the JSON file holding the alarm list.
	AlarmsFile string `yaml:"alarms_file"`
	// Timeout bounds RPC calls made by the CLI.
	Timeout time.Duration `yaml:"timeout"`
	// MetricsAddress enables the Prometheus endpoint when set.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
	// Speech configures spoken replies and ringing.
	Speech SpeechConfig `yaml:"speech"`
	// Ringer configures the trigger-time loop.
	Ringer RingerConfig `yaml:"ringer"`
}

// SpeechConfig describes the text-to-speech chain.
type SpeechConfig struct {
	// APIBaseURL is the root of the ElevenLabs compatible API.
	APIBaseURL string `yaml:"api_base_url"`
	// APIKey authenticates against the API. Empty disables the HTTP synthesizer.
	APIKey string `yaml:"api_key,omitempty"`
	// VoiceID selects the remote voice.
	VoiceID string `yaml:"voice_id"`
	// ModelID selects the remote model.
	ModelID string `yaml:"model_id"`
	// FallbackCommand is a local synthesizer command line that prints WAV audio
	// to stdout for the text given as its last argument.
	FallbackCommand string `yaml:"fallback_command"`
	// PlayerCommand plays audio read from stdin. Empty means log-only playback.
	PlayerCommand string `yaml:"player_command,omitempty"`
}

// RingerConfig controls when alarms ring.
type RingerConfig struct {
	Tick         time.Duration `yaml:"tick"`
	Snooze       time.Duration `yaml:"snooze"`
	MissedWindow time.Duration `yaml:"missed_window"`
}

const (
	// DefaultConfigFilename is the settings file looked up when no path is given.
	DefaultConfigFilename = "vlarm-settings.yaml"

	// DefaultAlarmsFilename is where the alarm list is stored by default.
	DefaultAlarmsFilename = "vlarm-alarms.json"

	// DefaultTimeout is the default RPC timeout.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is used for every file vlarm writes.
	DefaultFilePermissions = 0o600

	// DefaultAPIBaseURL points at the public ElevenLabs API.
	DefaultAPIBaseURL = "https://api.elevenlabs.io/v1"

	// DefaultVoiceID is the "Rachel" voice.
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

	// DefaultModelID is available on the free tier.
	DefaultModelID = "eleven_turbo_v2_5"

	// DefaultFallbackCommand is the local synthesizer; the text is appended as the last argument.
	DefaultFallbackCommand = "espeak-ng --stdout"

	// DefaultTick is how often the ringer samples the clock.
	DefaultTick = time.Second

	// DefaultSnooze is how far a snooze pushes an alarm.
	DefaultSnooze = 9 * time.Minute

	// DefaultMissedWindow is how late a one-shot alarm may still ring.
	DefaultMissedWindow = time.Minute

	// APIKeyEnv overrides Speech.APIKey.
	APIKeyEnv = "VLARM_ELEVENLABS_API_KEY"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerAddressRequired is returned when server address is missing.
	errServerAddressRequired = errors.New("server address must be provided")
	// errUnknownLogLevel is returned for a log level ParseLogLevel rejects.
	errUnknownLogLevel = errors.New("unknown log level")
	// errNegativeDuration is returned for negative ringer durations.
	errNegativeDuration = errors.New("duration must not be negative")
)

// Load reads settings from path, applies the environment override and validates them.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.Speech.APIKey = key
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// The file may carry an API key.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults.
//
//nolint:cyclop // A flat list of independent checks.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if cfg.MetricsAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics address: %w", err)
		}
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.AlarmsFile == "" {
		cfg.AlarmsFile = DefaultAlarmsFilename
	}

	if err := validateSpeech(&cfg.Speech); err != nil {
		return err
	}

	return validateRinger(&cfg.Ringer)
}

func validateSpeech(s *SpeechConfig) error {
	if s.APIBaseURL == "" {
		s.APIBaseURL = DefaultAPIBaseURL
	}

	if _, err := url.ParseRequestURI(s.APIBaseURL); err != nil {
		return fmt.Errorf("invalid speech API URL: %w", err)
	}

	if s.VoiceID == "" {
		s.VoiceID = DefaultVoiceID
	}

	if s.ModelID == "" {
		s.ModelID = DefaultModelID
	}

	if s.FallbackCommand == "" {
		s.FallbackCommand = DefaultFallbackCommand
	}

	return nil
}

func validateRinger(r *RingerConfig) error {
	if r.Tick < 0 || r.Snooze < 0 || r.MissedWindow < 0 {
		return errNegativeDuration
	}

	if r.Tick == 0 {
		r.Tick = DefaultTick
	}

	if r.Snooze == 0 {
		r.Snooze = DefaultSnooze
	}

	if r.MissedWindow == 0 {
		r.MissedWindow = DefaultMissedWindow
	}

	return nil
}
