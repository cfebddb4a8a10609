// Package script provides dialogue segmentation for speaker-tagged scripts.
package script

import "strings"

// Segment is a contiguous run of script text attributed to one speaker.
// Ordinals are assigned by the segmenter, strictly increasing from zero with
// no gaps, and fix the position of the segment in the final episode.
type Segment struct {
	Speaker string
	Text    string
	Ordinal int
}

// Segmenter splits raw script text into ordered speaker turns. A line opens a
// new turn only when it starts with "<speaker>: " for a recognized speaker;
// every other non-blank line continues the current turn. Text before the
// first recognized tag is attributed to the fallback speaker.
type Segmenter struct {
	speakers map[string]struct{}
	fallback string
}

// NewSegmenter creates a segmenter for the given speaker set.
func NewSegmenter(speakers []string, fallback string) *Segmenter {
	known := make(map[string]struct{}, len(speakers))
	for _, s := range speakers {
		known[s] = struct{}{}
	}
	return &Segmenter{
		speakers: known,
		fallback: fallback,
	}
}

// Segment parses the script into ordered dialogue segments. It is total: any
// input yields at least one segment, except an empty or whitespace-only
// script, which yields none. Ordinals are strictly increasing from zero with
// no gaps. The result is deterministic for a given script.
func (s *Segmenter) Segment(text string) []Segment {
	var segments []Segment

	speaker := s.fallback
	var parts []string

	flush := func() {
		joined := strings.TrimSpace(strings.Join(parts, " "))
		parts = parts[:0]
		if joined == "" {
			return
		}
		segments = append(segments, Segment{
			Speaker: speaker,
			Text:    joined,
			Ordinal: len(segments),
		})
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if name, rest, ok := s.boundary(trimmed); ok {
			flush()
			speaker = name
			if rest != "" {
				parts = append(parts, rest)
			}
			continue
		}

		parts = append(parts, trimmed)
	}
	flush()

	return segments
}

// boundary reports whether the line opens a new turn, returning the speaker
// and the remainder of the line.
func (s *Segmenter) boundary(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	name := line[:idx]
	if _, ok := s.speakers[name]; !ok {
		return "", "", false
	}
	rest := line[idx+1:]
	// The tag must be "<speaker>: " with a space (or nothing) after the colon,
	// so prose like "Note:this" never opens a turn for an unknown word.
	if rest != "" && !strings.HasPrefix(rest, " ") {
		return "", "", false
	}
	return name, strings.TrimSpace(rest), true
}
