package podcast

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/educast/podcast/engines"
	"github.com/dgnsrekt/educast/podcast/engines/mock"
	"github.com/dgnsrekt/educast/podcast/engines/openai"
	"github.com/dgnsrekt/educast/podcast/engines/piper"
)

// NewEngine builds the synthesis engine factory selected by the config.
func NewEngine(cfg Config, logger *log.Logger) (engines.Factory, error) {
	switch cfg.Engine {
	case "mock":
		return mock.New(cfg.SampleRate, cfg.Mock.Delay, cfg.Mock.FailVoice), nil
	case "piper":
		return piper.New(cfg.Piper.Binary, cfg.Piper.ModelDir, cfg.SampleRate, logger), nil
	case "openai":
		return openai.New(openai.Options{
			APIKey:            cfg.OpenAI.APIKey,
			BaseURL:           cfg.OpenAI.BaseURL,
			Model:             cfg.OpenAI.Model,
			RequestsPerMinute: cfg.OpenAI.RequestsPerMinute,
			Timeout:           cfg.OpenAI.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}
