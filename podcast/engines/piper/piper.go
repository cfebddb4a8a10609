// Package piper runs the piper neural text-to-speech binary, one process per
// synthesis call. Voice identifiers name .onnx model files inside the
// configured model directory.
package piper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/educast/podcast/audio"
	"github.com/dgnsrekt/educast/podcast/engines"
)

// Factory builds piper clients bound to model files.
type Factory struct {
	binary     string
	modelDir   string
	sampleRate int
	logger     *log.Logger
}

// New creates a piper engine factory.
func New(binary, modelDir string, sampleRate int, logger *log.Logger) *Factory {
	return &Factory{
		binary:     binary,
		modelDir:   modelDir,
		sampleRate: sampleRate,
		logger:     logger.WithPrefix("piper"),
	}
}

// Name returns the engine name.
func (f *Factory) Name() string { return "piper" }

// Ping verifies the piper binary and model directory exist.
func (f *Factory) Ping() error {
	if _, err := exec.LookPath(f.binary); err != nil {
		return fmt.Errorf("piper binary %q not found: %w", f.binary, err)
	}
	info, err := os.Stat(f.modelDir)
	if err != nil {
		return fmt.Errorf("piper model dir %q: %w", f.modelDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("piper model dir %q is not a directory", f.modelDir)
	}
	return nil
}

// NewClient binds a client to the model file for the given voice.
func (f *Factory) NewClient(voiceID string) (engines.Client, error) {
	model := filepath.Join(f.modelDir, voiceID+".onnx")
	if _, err := os.Stat(model); err != nil {
		return nil, fmt.Errorf("model for voice %q: %w", voiceID, err)
	}
	return &client{factory: f, voiceID: voiceID, model: model}, nil
}

type client struct {
	factory *Factory
	voiceID string
	model   string
}

// VoiceID returns the voice identifier this client speaks with.
func (c *client) VoiceID() string { return c.voiceID }

// Synthesize runs piper with the bound model and wraps the raw PCM output
// into a WAV clip.
func (c *client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f := c.factory

	args := []string{
		"--model", c.model,
		"--output-raw",
	}
	cmd := exec.CommandContext(ctx, f.binary, args...)
	cmd.Stdin = bytes.NewBufferString(text + "\n")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.logger.Debug("running piper", "voice", c.voiceID, "textLen", len(text))
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("piper timed out: %w", ctxErr)
		}
		return nil, fmt.Errorf("piper failed: %w: %s", err, stderr.String())
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("piper produced no audio")
	}

	return audio.FromPCM16(output, f.sampleRate, 1)
}
