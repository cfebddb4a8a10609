package podcast

import (
	"context"
	"fmt"
	"os"
)

// ScriptSource supplies the raw script text for one task. Fetch happens in
// the FETCHING phase; failures there fail the task before any synthesis.
type ScriptSource interface {
	// Fetch returns the script text.
	Fetch(ctx context.Context) (string, error)

	// Path describes the source origin for the task record. Empty for
	// in-memory sources.
	Path() string
}

// FileSource reads the script from a file on disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading from path.
func NewFileSource(path string) FileSource {
	return FileSource{path: path}
}

// Fetch reads the script file.
func (s FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("unable to read script: %w", err)
	}
	return string(data), nil
}

// Path returns the script file path.
func (s FileSource) Path() string { return s.path }

// StringSource serves a script held in memory, as submitted over the API.
type StringSource struct {
	text string
}

// NewStringSource creates a source over the given text.
func NewStringSource(text string) StringSource {
	return StringSource{text: text}
}

// Fetch returns the held text.
func (s StringSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.text, nil
}

// Path returns the empty string; the source has no on-disk origin.
func (s StringSource) Path() string { return "" }
