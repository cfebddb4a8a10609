package podcast

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Synthesizer converts dialogue segments into per-segment WAV chunks inside
// a task-private working directory. Synthesis is all-or-nothing: the first
// failing segment aborts the run and the caller discards any chunks already
// written.
type Synthesizer struct {
	pool    *VoicePool
	dir     string
	timeout time.Duration
	logger  *log.Logger
}

// NewSynthesizer creates a synthesizer writing chunks into dir. A zero
// timeout leaves each synthesis call unbounded.
func NewSynthesizer(pool *VoicePool, dir string, timeout time.Duration, logger *log.Logger) *Synthesizer {
	return &Synthesizer{
		pool:    pool,
		dir:     dir,
		timeout: timeout,
		logger:  logger,
	}
}

// Run synthesizes every segment in order and returns one chunk per segment,
// in the same order. progress, if non-nil, is called after each finished
// segment with the count done and the total. On error the already-written
// chunk files are removed before returning.
func (s *Synthesizer) Run(ctx context.Context, segments []DialogueSegment, progress func(done, total int)) ([]AudioChunk, error) {
	if len(segments) == 0 {
		return nil, NewPipelineError(ErrEmptyInput, "synthesizer", nil)
	}

	chunks := make([]AudioChunk, 0, len(segments))
	for i, seg := range segments {
		chunk, err := s.synthesizeSegment(ctx, seg)
		if err != nil {
			removeChunks(chunks)
			return nil, err
		}
		chunks = append(chunks, chunk)
		if progress != nil {
			progress(i+1, len(segments))
		}
	}
	return chunks, nil
}

func (s *Synthesizer) synthesizeSegment(ctx context.Context, seg DialogueSegment) (AudioChunk, error) {
	voiceID := s.pool.ResolveVoice(seg.Speaker)
	client, err := s.pool.Client(voiceID)
	if err != nil {
		return AudioChunk{}, err
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Debug("synthesizing segment",
		"ordinal", seg.Ordinal,
		"speaker", seg.Speaker,
		"voice", voiceID,
		"textLen", len(seg.Text),
	)

	data, err := client.Synthesize(callCtx, seg.Text)
	if err != nil {
		return AudioChunk{}, NewPipelineError(ErrSegmentSynthesis, "synthesizer", err).
			WithSegment(seg.Speaker, seg.Ordinal)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("chunk_%04d.wav", seg.Ordinal))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return AudioChunk{}, NewPipelineError(ErrSegmentSynthesis, "synthesizer", err).
			WithSegment(seg.Speaker, seg.Ordinal)
	}

	return AudioChunk{
		Ordinal: seg.Ordinal,
		Speaker: seg.Speaker,
		Path:    path,
	}, nil
}

// removeChunks deletes chunk files, ignoring errors; the task's working
// directory is removed wholesale afterwards anyway.
func removeChunks(chunks []AudioChunk) {
	for _, c := range chunks {
		_ = os.Remove(c.Path)
	}
}
