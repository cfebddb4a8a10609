package podcast

import (
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/educast/podcast/engines"
)

// VoicePool resolves speakers to voices and caches one synthesis client per
// voice id. A pool belongs to exactly one task: its worker goroutine is the
// only caller, so no locking is needed. Speakers sharing a voice share the
// cached client.
type VoicePool struct {
	profile VoiceProfile
	factory engines.Factory
	clients map[string]engines.Client
	logger  *log.Logger
}

// NewVoicePool creates a pool over the given factory. It pings the factory up
// front so a misconfigured engine fails the task before any segment work.
func NewVoicePool(profile VoiceProfile, factory engines.Factory, logger *log.Logger) (*VoicePool, error) {
	if err := factory.Ping(); err != nil {
		return nil, NewPipelineError(ErrConfiguration, "pool", err)
	}
	return &VoicePool{
		profile: profile,
		factory: factory,
		clients: make(map[string]engines.Client),
		logger:  logger,
	}, nil
}

// ResolveVoice maps a speaker name to a voice id, falling back to the
// profile's fallback voice for unrecognized speakers.
func (p *VoicePool) ResolveVoice(speaker string) string {
	return p.profile.Resolve(speaker)
}

// Client returns the cached client for the voice, constructing it on first
// use. Repeated calls with the same voice id return the same client.
func (p *VoicePool) Client(voiceID string) (engines.Client, error) {
	if c, ok := p.clients[voiceID]; ok {
		return c, nil
	}
	c, err := p.factory.NewClient(voiceID)
	if err != nil {
		return nil, NewPipelineError(ErrConfiguration, "pool", err)
	}
	p.logger.Debug("voice client created", "engine", p.factory.Name(), "voice", voiceID)
	p.clients[voiceID] = c
	return c, nil
}

// Size returns the number of distinct voice clients in the cache.
func (p *VoicePool) Size() int {
	return len(p.clients)
}
