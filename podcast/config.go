package podcast

import (
	"fmt"
	"strings"
	"time"
)

// Config contains all synthesis pipeline configuration options.
type Config struct {
	// Engine selects the synthesis backend.
	Engine string `yaml:"engine" env:"EDUCAST_ENGINE"`

	// SampleRate is the output sample rate in Hz. All chunks produced within
	// one task share it; the assembler never resamples.
	SampleRate int `yaml:"sample_rate" env:"EDUCAST_SAMPLE_RATE"`

	// PauseMs is the silence inserted between consecutive speaker turns.
	PauseMs int `yaml:"pause_ms" env:"EDUCAST_PAUSE_MS"`

	// Speakers maps recognized speaker names to voice identifiers.
	Speakers map[string]string `yaml:"speakers"`

	// FallbackSpeaker is attributed any script text with no recognized
	// speaker tag.
	FallbackSpeaker string `yaml:"fallback_speaker" env:"EDUCAST_FALLBACK_SPEAKER"`

	// FallbackVoice is used for speakers with no configured voice.
	FallbackVoice string `yaml:"fallback_voice" env:"EDUCAST_FALLBACK_VOICE"`

	// MaxConcurrentTasks caps the number of workers running pipelines at
	// once; further submissions queue in STARTED.
	MaxConcurrentTasks int `yaml:"max_concurrent_tasks" env:"EDUCAST_MAX_CONCURRENT_TASKS"`

	// SynthTimeout bounds each external synthesis call. Zero disables the
	// deadline and restores block-forever behavior.
	SynthTimeout time.Duration `yaml:"synth_timeout" env:"EDUCAST_SYNTH_TIMEOUT"`

	// WorkDir is the base directory for per-task working directories.
	// Empty means the system temp directory.
	WorkDir string `yaml:"work_dir" env:"EDUCAST_WORK_DIR"`

	// Engine-specific configurations
	Piper  PiperConfig  `yaml:"piper"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Mock   MockConfig   `yaml:"mock"`

	// Store selects the task status backing store.
	Store StoreConfig `yaml:"store"`

	// Server configures the polling HTTP API.
	Server ServerConfig `yaml:"server"`
}

// PiperConfig contains piper engine specific settings. Voice identifiers name
// .onnx model files inside ModelDir.
type PiperConfig struct {
	Binary   string `yaml:"binary" env:"EDUCAST_PIPER_BINARY"`
	ModelDir string `yaml:"model_dir" env:"EDUCAST_PIPER_MODEL_DIR"`
}

// OpenAIConfig contains settings for the hosted speech endpoint.
type OpenAIConfig struct {
	APIKey            string        `yaml:"api_key" env:"EDUCAST_OPENAI_API_KEY"`
	BaseURL           string        `yaml:"base_url" env:"EDUCAST_OPENAI_BASE_URL"`
	Model             string        `yaml:"model" env:"EDUCAST_OPENAI_MODEL"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"EDUCAST_OPENAI_RPM"`
	Timeout           time.Duration `yaml:"timeout" env:"EDUCAST_OPENAI_TIMEOUT"`
}

// MockConfig contains mock engine settings for testing.
type MockConfig struct {
	Delay     time.Duration `yaml:"delay" env:"EDUCAST_MOCK_DELAY"`
	FailVoice string        `yaml:"fail_voice" env:"EDUCAST_MOCK_FAIL_VOICE"`
}

// StoreConfig selects and configures the task store backend.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"EDUCAST_STORE_BACKEND"`
	Path    string `yaml:"path" env:"EDUCAST_STORE_PATH"`
}

// ServerConfig configures the HTTP polling surface.
type ServerConfig struct {
	Addr      string `yaml:"addr" env:"EDUCAST_SERVER_ADDR"`
	OutputDir string `yaml:"output_dir" env:"EDUCAST_SERVER_OUTPUT_DIR"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:     "mock",
		SampleRate: 22050,
		PauseMs:    300,
		Speakers: map[string]string{
			"Sarah": "en_US-amy-medium",
			"Mike":  "en_US-ryan-medium",
		},
		FallbackSpeaker:    "Narrator",
		FallbackVoice:      "narrator-neutral",
		MaxConcurrentTasks: 4,
		SynthTimeout:       60 * time.Second,

		Piper: PiperConfig{
			Binary: "piper",
		},
		OpenAI: OpenAIConfig{
			Model:             "tts-1",
			RequestsPerMinute: 50,
			Timeout:           45 * time.Second,
		},
		Mock: MockConfig{},

		Store: StoreConfig{
			Backend: "memory",
		},
		Server: ServerConfig{
			Addr:      ":8080",
			OutputDir: "episodes",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validEngines := []string{"mock", "piper", "openai"}
	engineValid := false
	for _, e := range validEngines {
		if strings.EqualFold(c.Engine, e) {
			engineValid = true
			c.Engine = strings.ToLower(c.Engine)
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("invalid engine '%s': must be one of %v", c.Engine, validEngines)
	}

	validSampleRates := []int{8000, 16000, 22050, 24000, 44100, 48000}
	sampleRateValid := false
	for _, sr := range validSampleRates {
		if c.SampleRate == sr {
			sampleRateValid = true
			break
		}
	}
	if !sampleRateValid {
		return fmt.Errorf("invalid sample rate %d: must be one of %v", c.SampleRate, validSampleRates)
	}

	if c.PauseMs < 0 || c.PauseMs > 10000 {
		return fmt.Errorf("pause_ms must be between 0 and 10000, got %d", c.PauseMs)
	}

	if c.FallbackSpeaker == "" {
		return fmt.Errorf("fallback_speaker cannot be empty")
	}
	if c.FallbackVoice == "" {
		return fmt.Errorf("fallback_voice cannot be empty")
	}

	if c.MaxConcurrentTasks < 1 || c.MaxConcurrentTasks > 64 {
		return fmt.Errorf("max_concurrent_tasks must be between 1 and 64, got %d", c.MaxConcurrentTasks)
	}

	if c.SynthTimeout < 0 {
		return fmt.Errorf("synth_timeout cannot be negative, got %v", c.SynthTimeout)
	}

	switch c.Engine {
	case "piper":
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	case "openai":
		if err := c.OpenAI.Validate(); err != nil {
			return fmt.Errorf("openai config: %w", err)
		}
	}

	validBackends := []string{"memory", "sqlite"}
	backendValid := false
	for _, b := range validBackends {
		if strings.EqualFold(c.Store.Backend, b) {
			backendValid = true
			c.Store.Backend = strings.ToLower(c.Store.Backend)
			break
		}
	}
	if !backendValid {
		return fmt.Errorf("invalid store backend '%s': must be one of %v", c.Store.Backend, validBackends)
	}
	if c.Store.Backend == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store path is required for the sqlite backend")
	}

	return nil
}

// Validate checks if the piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("piper binary path cannot be empty")
	}
	if c.ModelDir == "" {
		return fmt.Errorf("piper model_dir cannot be empty")
	}
	return nil
}

// Validate checks if the openai configuration is valid.
func (c *OpenAIConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("openai model cannot be empty")
	}
	if c.RequestsPerMinute < 1 || c.RequestsPerMinute > 10000 {
		return fmt.Errorf("requests_per_minute must be between 1 and 10000, got %d", c.RequestsPerMinute)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second, got %v", c.Timeout)
	}
	return nil
}

// Pause returns the configured inter-speaker pause as a duration.
func (c *Config) Pause() time.Duration {
	return time.Duration(c.PauseMs) * time.Millisecond
}

// VoiceProfile builds the speaker to voice mapping used by a task's pool.
func (c *Config) VoiceProfile() VoiceProfile {
	voices := make(map[string]string, len(c.Speakers))
	for speaker, voice := range c.Speakers {
		voices[speaker] = voice
	}
	return VoiceProfile{
		Voices:          voices,
		FallbackSpeaker: c.FallbackSpeaker,
		FallbackVoice:   c.FallbackVoice,
	}
}
