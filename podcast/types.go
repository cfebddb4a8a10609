package podcast

import (
	"time"

	"github.com/dgnsrekt/educast/podcast/script"
)

// DialogueSegment is a contiguous run of script text attributed to one
// speaker, as produced by the segmenter.
type DialogueSegment = script.Segment

// VoiceProfile maps speaker names to synthesis voice identifiers.
type VoiceProfile struct {
	Voices          map[string]string // speaker -> voice id
	FallbackSpeaker string            // speaker assigned to untagged text
	FallbackVoice   string            // voice id for unrecognized speakers
}

// Resolve returns the voice id configured for speaker, or the fallback voice
// when the speaker is not in the profile.
func (p VoiceProfile) Resolve(speaker string) string {
	if id, ok := p.Voices[speaker]; ok && id != "" {
		return id
	}
	return p.FallbackVoice
}

// Speakers returns the configured speaker names.
func (p VoiceProfile) Speakers() []string {
	names := make([]string, 0, len(p.Voices))
	for name := range p.Voices {
		names = append(names, name)
	}
	return names
}

// AudioChunk is the transient audio artifact produced for one segment. It is
// exclusively owned by the task that created it and is deleted from disk by
// the time that task reaches a terminal state.
type AudioChunk struct {
	Ordinal int
	Speaker string
	Path    string
}

// EpisodeResult describes the output of a completed task.
type EpisodeResult struct {
	AudioPath  string        `json:"audio_path"`
	ScriptPath string        `json:"script_path,omitempty"`
	FileSize   int64         `json:"file_size"`
	Duration   time.Duration `json:"duration_estimate"`
}

// Task is the pollable record for one synthesis run. A task is mutated only
// by its own worker goroutine and becomes immutable once it reaches a
// terminal status.
type Task struct {
	ID        string
	Status    Status
	Progress  int // 0-100, monotonically non-decreasing
	Message   string
	Result    *EpisodeResult
	Err       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the task has finished, successfully or not.
func (t Task) Terminal() bool {
	return t.Status.Terminal()
}

// Clone returns a deep copy of the task, safe to hand to other goroutines.
func (t Task) Clone() Task {
	out := t
	if t.Result != nil {
		r := *t.Result
		out.Result = &r
	}
	return out
}
