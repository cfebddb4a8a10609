// Package openai synthesizes speech through the hosted OpenAI speech
// endpoint. All clients created by one factory share a rate limiter so a
// burst of segments stays inside the account's requests-per-minute budget.
package openai

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/educast/podcast/engines"
)

// Factory builds clients that call the speech endpoint.
type Factory struct {
	client  *openaisdk.Client
	model   string
	hasKey  bool
	limiter *rate.Limiter
	timeout time.Duration
	logger  *log.Logger
}

// Options configures the factory.
type Options struct {
	APIKey            string
	BaseURL           string
	Model             string
	RequestsPerMinute int
	Timeout           time.Duration
}

// New creates an openai engine factory.
func New(opts Options, logger *log.Logger) *Factory {
	reqOpts := []option.RequestOption{}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openaisdk.NewClient(reqOpts...)

	rpm := opts.RequestsPerMinute
	if rpm < 1 {
		rpm = 1
	}

	return &Factory{
		client:  &client,
		model:   opts.Model,
		hasKey:  opts.APIKey != "",
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		timeout: opts.Timeout,
		logger:  logger.WithPrefix("openai"),
	}
}

// Name returns the engine name.
func (f *Factory) Name() string { return "openai" }

// Ping verifies an API key is present. The key itself is only proven valid by
// the first synthesis call.
func (f *Factory) Ping() error {
	if !f.hasKey {
		return fmt.Errorf("openai api key is not set")
	}
	return nil
}

// NewClient constructs a client bound to the given voice.
func (f *Factory) NewClient(voiceID string) (engines.Client, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("voice id cannot be empty")
	}
	return &client{factory: f, voiceID: voiceID}, nil
}

type client struct {
	factory *Factory
	voiceID string
}

// VoiceID returns the voice identifier this client speaks with.
func (c *client) VoiceID() string { return c.voiceID }

// Synthesize requests a WAV clip from the speech endpoint, waiting on the
// shared rate limiter first.
func (c *client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f := c.factory

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	f.logger.Debug("requesting speech", "voice", c.voiceID, "textLen", len(text))
	resp, err := f.client.Audio.Speech.New(ctx, openaisdk.AudioSpeechNewParams{
		Model:          openaisdk.SpeechModel(f.model),
		Input:          text,
		Voice:          openaisdk.AudioSpeechNewParamsVoice(c.voiceID),
		ResponseFormat: openaisdk.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading speech response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("speech endpoint returned no audio")
	}
	return data, nil
}
