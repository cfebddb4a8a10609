package podcast

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:   "engine is case insensitive",
			mutate: func(c *Config) { c.Engine = "MOCK" },
		},
		{
			name:    "unknown engine",
			mutate:  func(c *Config) { c.Engine = "festival" },
			wantErr: "invalid engine",
		},
		{
			name:    "unsupported sample rate",
			mutate:  func(c *Config) { c.SampleRate = 12345 },
			wantErr: "invalid sample rate",
		},
		{
			name:    "negative pause",
			mutate:  func(c *Config) { c.PauseMs = -1 },
			wantErr: "pause_ms",
		},
		{
			name:    "pause too long",
			mutate:  func(c *Config) { c.PauseMs = 10001 },
			wantErr: "pause_ms",
		},
		{
			name:    "empty fallback speaker",
			mutate:  func(c *Config) { c.FallbackSpeaker = "" },
			wantErr: "fallback_speaker",
		},
		{
			name:    "empty fallback voice",
			mutate:  func(c *Config) { c.FallbackVoice = "" },
			wantErr: "fallback_voice",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.MaxConcurrentTasks = 0 },
			wantErr: "max_concurrent_tasks",
		},
		{
			name:    "negative synth timeout",
			mutate:  func(c *Config) { c.SynthTimeout = -time.Second },
			wantErr: "synth_timeout",
		},
		{
			name:   "zero synth timeout disables the deadline",
			mutate: func(c *Config) { c.SynthTimeout = 0 },
		},
		{
			name: "piper requires a model dir",
			mutate: func(c *Config) {
				c.Engine = "piper"
				c.Piper.ModelDir = ""
			},
			wantErr: "model_dir",
		},
		{
			name: "openai requires a model",
			mutate: func(c *Config) {
				c.Engine = "openai"
				c.OpenAI.Model = ""
			},
			wantErr: "model",
		},
		{
			name:    "unknown store backend",
			mutate:  func(c *Config) { c.Store.Backend = "postgres" },
			wantErr: "store backend",
		},
		{
			name: "sqlite backend requires a path",
			mutate: func(c *Config) {
				c.Store.Backend = "sqlite"
				c.Store.Path = ""
			},
			wantErr: "store path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine = "Mock"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Engine != "mock" {
		t.Errorf("engine should be normalized to lowercase, got %q", cfg.Engine)
	}
}

func TestVoiceProfileResolve(t *testing.T) {
	cfg := DefaultConfig()
	profile := cfg.VoiceProfile()

	if got := profile.Resolve("Sarah"); got != "en_US-amy-medium" {
		t.Errorf("Resolve(Sarah) = %q", got)
	}
	if got := profile.Resolve("Stranger"); got != cfg.FallbackVoice {
		t.Errorf("Resolve(Stranger) = %q, want fallback %q", got, cfg.FallbackVoice)
	}
}

func TestPause(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PauseMs = 250
	if got := cfg.Pause(); got != 250*time.Millisecond {
		t.Errorf("Pause() = %v", got)
	}
}
