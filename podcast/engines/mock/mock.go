// Package mock provides a deterministic synthesis engine for testing.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gaudio "github.com/go-audio/audio"

	"github.com/dgnsrekt/educast/podcast/audio"
	"github.com/dgnsrekt/educast/podcast/engines"
)

// msPerWord sizes generated silence so durations scale with text length.
const msPerWord = 120

// Factory builds mock clients that emit silence sized to the input text.
type Factory struct {
	sampleRate int
	delay      time.Duration
	failVoice  string

	mu          sync.Mutex
	pingErr     error
	synthErr    error
	callCount   int
	inFlight    int
	maxInFlight int
}

// New creates a mock engine factory.
func New(sampleRate int, delay time.Duration, failVoice string) *Factory {
	return &Factory{
		sampleRate: sampleRate,
		delay:      delay,
		failVoice:  failVoice,
	}
}

// Name returns the engine name.
func (f *Factory) Name() string { return "mock" }

// Ping reports the injected availability error, if any.
func (f *Factory) Ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

// NewClient constructs a client for the given voice.
func (f *Factory) NewClient(voiceID string) (engines.Client, error) {
	return &client{factory: f, voiceID: voiceID}, nil
}

// SetPingError makes Ping fail, simulating missing credentials.
func (f *Factory) SetPingError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

// SetSynthesisError makes every Synthesize call fail.
func (f *Factory) SetSynthesisError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synthErr = err
}

// CallCount returns the number of Synthesize calls across all clients.
func (f *Factory) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// MaxInFlight returns the highest number of Synthesize calls observed running
// at the same time across all clients.
func (f *Factory) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

type client struct {
	factory *Factory
	voiceID string
}

// VoiceID returns the voice identifier this client speaks with.
func (c *client) VoiceID() string { return c.voiceID }

// Synthesize emits a silence clip proportional to the word count.
func (c *client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f := c.factory

	f.mu.Lock()
	f.callCount++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	failVoice := f.failVoice
	synthErr := f.synthErr
	delay := f.delay
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if synthErr != nil {
		return nil, synthErr
	}
	if failVoice != "" && c.voiceID == failVoice {
		return nil, fmt.Errorf("voice %s is configured to fail", c.voiceID)
	}

	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	d := time.Duration(words*msPerWord) * time.Millisecond

	buf := audio.Silence(&gaudio.Format{SampleRate: f.sampleRate, NumChannels: 1}, 16, d)
	return audio.EncodeBuffer(buf)
}
