// Package engines defines the contract between the synthesis pipeline and
// the text-to-speech backends that implement it.
package engines

import "context"

// Client produces audio for one synthesis voice. Clients are constructed by a
// Factory, cached per voice id by the task's voice pool, and used by a single
// task at a time.
type Client interface {
	// VoiceID returns the voice identifier this client speaks with.
	VoiceID() string

	// Synthesize converts text to a complete WAV-encoded clip. The call is
	// synchronous and blocks until the backend responds or ctx expires.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Factory constructs per-voice clients for one backend.
type Factory interface {
	// Name returns the engine name as used in configuration.
	Name() string

	// Ping verifies credentials and external dependencies. It is called once
	// before any segment work so misconfiguration fails the task up front.
	Ping() error

	// NewClient constructs a client bound to the given voice identifier.
	NewClient(voiceID string) (Client, error)
}
