package podcast

import "fmt"

// Status represents the lifecycle phase of a synthesis task.
type Status int

const (
	// StatusStarted indicates the task was accepted but no work has begun.
	StatusStarted Status = iota
	// StatusFetching indicates the script source is being read.
	StatusFetching
	// StatusProcessingScript indicates the script is being segmented.
	StatusProcessingScript
	// StatusGeneratingAudio indicates per-segment synthesis and assembly.
	StatusGeneratingAudio
	// StatusCompleted indicates the episode was written successfully.
	StatusCompleted
	// StatusError indicates the task failed; the record carries the cause.
	StatusError
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusStarted:
		return "STARTED"
	case StatusFetching:
		return "FETCHING"
	case StatusProcessingScript:
		return "PROCESSING_SCRIPT"
	case StatusGeneratingAudio:
		return "GENERATING_AUDIO"
	case StatusCompleted:
		return "COMPLETED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the status is absorbing.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// ParseStatus converts a wire representation back into a Status.
func ParseStatus(raw string) (Status, error) {
	for _, s := range []Status{
		StatusStarted, StatusFetching, StatusProcessingScript,
		StatusGeneratingAudio, StatusCompleted, StatusError,
	} {
		if s.String() == raw {
			return s, nil
		}
	}
	return StatusError, fmt.Errorf("unknown task status %q", raw)
}

// transitions holds the valid forward edges of the task state machine.
// Terminal states have no outgoing edges.
var transitions = map[Status][]Status{
	StatusStarted:          {StatusFetching, StatusError},
	StatusFetching:         {StatusProcessingScript, StatusError},
	StatusProcessingScript: {StatusGeneratingAudio, StatusError},
	StatusGeneratingAudio:  {StatusCompleted, StatusError},
}

// CanTransition reports whether moving from one status to another is valid.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
