package podcast

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// LoadConfig resolves the effective configuration: defaults, then the viper
// config file, then EDUCAST_* environment overrides, then validation.
func LoadConfig() (Config, error) {
	cfg, err := LoadConfigFromViper()
	if err != nil {
		return cfg, err
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadConfigFromViper loads pipeline configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("engine") {
		cfg.Engine = viper.GetString("engine")
	}
	if viper.IsSet("sample_rate") {
		cfg.SampleRate = viper.GetInt("sample_rate")
	}
	if viper.IsSet("pause_ms") {
		cfg.PauseMs = viper.GetInt("pause_ms")
	}
	if viper.IsSet("speakers") {
		cfg.Speakers = viper.GetStringMapString("speakers")
	}
	if viper.IsSet("fallback_speaker") {
		cfg.FallbackSpeaker = viper.GetString("fallback_speaker")
	}
	if viper.IsSet("fallback_voice") {
		cfg.FallbackVoice = viper.GetString("fallback_voice")
	}
	if viper.IsSet("max_concurrent_tasks") {
		cfg.MaxConcurrentTasks = viper.GetInt("max_concurrent_tasks")
	}
	if viper.IsSet("synth_timeout") {
		if d, err := time.ParseDuration(viper.GetString("synth_timeout")); err == nil {
			cfg.SynthTimeout = d
		}
	}
	if viper.IsSet("work_dir") {
		cfg.WorkDir = viper.GetString("work_dir")
	}

	cfg.Piper = loadPiperConfig()
	cfg.OpenAI = loadOpenAIConfig()
	cfg.Mock = loadMockConfig()
	cfg.Store = loadStoreConfig()
	cfg.Server = loadServerConfig()

	return cfg, nil
}

func loadPiperConfig() PiperConfig {
	cfg := DefaultConfig().Piper

	if viper.IsSet("piper.binary") {
		cfg.Binary = viper.GetString("piper.binary")
	}
	if viper.IsSet("piper.model_dir") {
		cfg.ModelDir = viper.GetString("piper.model_dir")
	}

	return cfg
}

func loadOpenAIConfig() OpenAIConfig {
	cfg := DefaultConfig().OpenAI

	if viper.IsSet("openai.api_key") {
		cfg.APIKey = viper.GetString("openai.api_key")
	}
	if viper.IsSet("openai.base_url") {
		cfg.BaseURL = viper.GetString("openai.base_url")
	}
	if viper.IsSet("openai.model") {
		cfg.Model = viper.GetString("openai.model")
	}
	if viper.IsSet("openai.requests_per_minute") {
		cfg.RequestsPerMinute = viper.GetInt("openai.requests_per_minute")
	}
	if viper.IsSet("openai.timeout") {
		if d, err := time.ParseDuration(viper.GetString("openai.timeout")); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

func loadMockConfig() MockConfig {
	cfg := DefaultConfig().Mock

	if viper.IsSet("mock.delay") {
		if d, err := time.ParseDuration(viper.GetString("mock.delay")); err == nil {
			cfg.Delay = d
		}
	}
	if viper.IsSet("mock.fail_voice") {
		cfg.FailVoice = viper.GetString("mock.fail_voice")
	}

	return cfg
}

func loadStoreConfig() StoreConfig {
	cfg := DefaultConfig().Store

	if viper.IsSet("store.backend") {
		cfg.Backend = viper.GetString("store.backend")
	}
	if viper.IsSet("store.path") {
		cfg.Path = viper.GetString("store.path")
	}

	return cfg
}

func loadServerConfig() ServerConfig {
	cfg := DefaultConfig().Server

	if viper.IsSet("server.addr") {
		cfg.Addr = viper.GetString("server.addr")
	}
	if viper.IsSet("server.output_dir") {
		cfg.OutputDir = viper.GetString("server.output_dir")
	}

	return cfg
}

// SetDefaults sets default values in Viper for pipeline configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("engine", defaults.Engine)
	viper.SetDefault("sample_rate", defaults.SampleRate)
	viper.SetDefault("pause_ms", defaults.PauseMs)
	viper.SetDefault("fallback_speaker", defaults.FallbackSpeaker)
	viper.SetDefault("fallback_voice", defaults.FallbackVoice)
	viper.SetDefault("max_concurrent_tasks", defaults.MaxConcurrentTasks)
	viper.SetDefault("synth_timeout", defaults.SynthTimeout.String())

	viper.SetDefault("piper.binary", defaults.Piper.Binary)

	viper.SetDefault("openai.model", defaults.OpenAI.Model)
	viper.SetDefault("openai.requests_per_minute", defaults.OpenAI.RequestsPerMinute)
	viper.SetDefault("openai.timeout", defaults.OpenAI.Timeout.String())

	viper.SetDefault("mock.delay", defaults.Mock.Delay.String())

	viper.SetDefault("store.backend", defaults.Store.Backend)

	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.output_dir", defaults.Server.OutputDir)
}
