package podcast

import (
	"errors"
	"fmt"
)

// Failure classes for the synthesis pipeline. All of them are fatal to the
// task that raised them; the worker converts them into a terminal ERROR
// record instead of letting them escape its goroutine.
var (
	// ErrConfiguration indicates the voice engine cannot be used at all:
	// missing credentials, missing binary or model files. Raised before any
	// segment work happens.
	ErrConfiguration = errors.New("voice engine configuration invalid")

	// ErrSegmentSynthesis indicates one segment's synthesis call failed.
	// A single segment failure aborts the whole task; partial episodes are
	// never produced.
	ErrSegmentSynthesis = errors.New("segment synthesis failed")

	// ErrEmptyInput indicates the script produced zero usable segments.
	ErrEmptyInput = errors.New("no usable dialogue segments")

	// ErrAssembly indicates chunk concatenation or export failed.
	ErrAssembly = errors.New("audio assembly failed")

	// ErrTaskNotFound indicates the requested task id is unknown.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskExists indicates a submit reused an existing task id.
	ErrTaskExists = errors.New("task id already exists")

	// ErrTaskFinal indicates an update was attempted on a terminal task.
	ErrTaskFinal = errors.New("task already reached a terminal state")

	// ErrUnknownEngine indicates the configured engine name is not registered.
	ErrUnknownEngine = errors.New("unknown synthesis engine")
)

// PipelineError carries the failure class plus the pipeline position where it
// happened, so task error messages can name the failing component and, for
// synthesis failures, the speaker and ordinal of the offending segment.
type PipelineError struct {
	Kind      error  // one of the sentinel errors above
	Component string // "pool", "segmenter", "synthesizer", "assembler"
	Speaker   string
	Ordinal   int
	Err       error // underlying cause, may be nil
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	msg := e.Kind.Error()
	if e.Speaker != "" {
		msg = fmt.Sprintf("%s: segment %d (%s)", msg, e.Ordinal, e.Speaker)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the failure class and the underlying cause to
// errors.Is and errors.As.
func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewPipelineError wraps cause with a failure class and component name.
func NewPipelineError(kind error, component string, cause error) *PipelineError {
	return &PipelineError{
		Kind:      kind,
		Component: component,
		Ordinal:   -1,
		Err:       cause,
	}
}

// WithSegment attaches the failing segment's identity to the error.
func (e *PipelineError) WithSegment(speaker string, ordinal int) *PipelineError {
	e.Speaker = speaker
	e.Ordinal = ordinal
	return e
}
