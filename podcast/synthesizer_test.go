package podcast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/educast/podcast/engines/mock"
)

func newTestSynthesizer(t *testing.T, factory *mock.Factory) (*Synthesizer, string) {
	t.Helper()
	pool, err := NewVoicePool(testProfile(), factory, log.Default())
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	return NewSynthesizer(pool, dir, 0, log.Default()), dir
}

func TestSynthesizerRun(t *testing.T) {
	synth, dir := newTestSynthesizer(t, mock.New(22050, 0, ""))

	segments := []DialogueSegment{
		{Speaker: "Sarah", Text: "Hello there.", Ordinal: 0},
		{Speaker: "Mike", Text: "Hi.", Ordinal: 1},
		{Speaker: "Sarah", Text: "Bye.", Ordinal: 2},
	}

	var calls []int
	chunks, err := synth.Run(context.Background(), segments, func(done, total int) {
		calls = append(calls, done)
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("chunk %d has ordinal %d", i, c.Ordinal)
		}
		if want := filepath.Join(dir, fmt.Sprintf("chunk_%04d.wav", i)); c.Path != want {
			t.Errorf("chunk %d path = %q", i, c.Path)
		}
		if _, err := os.Stat(c.Path); err != nil {
			t.Errorf("chunk %d file missing: %v", i, err)
		}
	}
	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("progress calls = %v", calls)
	}
}

func TestSynthesizerFailureRemovesEarlierChunks(t *testing.T) {
	// voice-b fails, so Mike's segment aborts the run.
	synth, dir := newTestSynthesizer(t, mock.New(22050, 0, "voice-b"))

	segments := []DialogueSegment{
		{Speaker: "Sarah", Text: "First.", Ordinal: 0},
		{Speaker: "Mike", Text: "Boom.", Ordinal: 1},
		{Speaker: "Sarah", Text: "Never reached.", Ordinal: 2},
	}

	_, err := synth.Run(context.Background(), segments, nil)
	if !errors.Is(err, ErrSegmentSynthesis) {
		t.Fatalf("expected ErrSegmentSynthesis, got %v", err)
	}

	var pipeErr *PipelineError
	if !errors.As(err, &pipeErr) {
		t.Fatal("expected a PipelineError")
	}
	if pipeErr.Speaker != "Mike" || pipeErr.Ordinal != 1 {
		t.Errorf("error names segment %d (%s), want 1 (Mike)", pipeErr.Ordinal, pipeErr.Speaker)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("working dir should be empty after failure, found %d entries", len(entries))
	}
}

func TestSynthesizerEmptyInput(t *testing.T) {
	synth, _ := newTestSynthesizer(t, mock.New(22050, 0, ""))

	_, err := synth.Run(context.Background(), nil, nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSynthesizerContextCancellation(t *testing.T) {
	synth, _ := newTestSynthesizer(t, mock.New(22050, 50*time.Millisecond, ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := synth.Run(ctx, []DialogueSegment{{Speaker: "Sarah", Text: "Hi.", Ordinal: 0}}, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in the chain, got %v", err)
	}
}
