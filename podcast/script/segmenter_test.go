package script

import (
	"reflect"
	"testing"
)

func newTestSegmenter() *Segmenter {
	return NewSegmenter([]string{"Sarah", "Mike", "Narrator"}, "Narrator")
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{
			name: "alternating speakers",
			text: "Sarah: Welcome to the show.\nMike: Thanks, glad to be here.\nSarah: Let's get started.",
			want: []Segment{
				{Speaker: "Sarah", Text: "Welcome to the show.", Ordinal: 0},
				{Speaker: "Mike", Text: "Thanks, glad to be here.", Ordinal: 1},
				{Speaker: "Sarah", Text: "Let's get started.", Ordinal: 2},
			},
		},
		{
			name: "continuation lines join the open turn",
			text: "Sarah: This is a long thought\nthat spans multiple lines\nand keeps going.\nMike: Short reply.",
			want: []Segment{
				{Speaker: "Sarah", Text: "This is a long thought that spans multiple lines and keeps going.", Ordinal: 0},
				{Speaker: "Mike", Text: "Short reply.", Ordinal: 1},
			},
		},
		{
			name: "preamble goes to the fallback speaker",
			text: "Episode 12: The one about testing.\nSarah: Here we go.",
			want: []Segment{
				{Speaker: "Narrator", Text: "Episode 12: The one about testing.", Ordinal: 0},
				{Speaker: "Sarah", Text: "Here we go.", Ordinal: 1},
			},
		},
		{
			name: "unknown speaker tags are plain text",
			text: "Sarah: A colon ahead.\nAlice: this is not a turn.\nMike: But this is.",
			want: []Segment{
				{Speaker: "Sarah", Text: "A colon ahead. Alice: this is not a turn.", Ordinal: 0},
				{Speaker: "Mike", Text: "But this is.", Ordinal: 1},
			},
		},
		{
			name: "known speaker without space after colon is plain text",
			text: "Sarah: Look at this.\nMike:no space means no turn.",
			want: []Segment{
				{Speaker: "Sarah", Text: "Look at this. Mike:no space means no turn.", Ordinal: 0},
			},
		},
		{
			name: "blank lines are skipped",
			text: "Sarah: First.\n\n\nMike: Second.\n\n",
			want: []Segment{
				{Speaker: "Sarah", Text: "First.", Ordinal: 0},
				{Speaker: "Mike", Text: "Second.", Ordinal: 1},
			},
		},
		{
			name: "tag with empty body and following text",
			text: "Sarah:\nThe text on the next line.\nMike: Done.",
			want: []Segment{
				{Speaker: "Sarah", Text: "The text on the next line.", Ordinal: 0},
				{Speaker: "Mike", Text: "Done.", Ordinal: 1},
			},
		},
		{
			name: "consecutive tags drop the empty turn",
			text: "Sarah:\nMike: Only me.",
			want: []Segment{
				{Speaker: "Mike", Text: "Only me.", Ordinal: 0},
			},
		},
		{
			name: "fallback only",
			text: "Just one line of narration.",
			want: []Segment{
				{Speaker: "Narrator", Text: "Just one line of narration.", Ordinal: 0},
			},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "   \n\t\n  ",
			want: nil,
		},
	}

	s := newTestSegmenter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Segment(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segment() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSegmentDeterministic(t *testing.T) {
	s := newTestSegmenter()
	text := "Sarah: One.\nMike: Two.\nthree continues\nSarah: Four."

	first := s.Segment(text)
	for i := 0; i < 10; i++ {
		if got := s.Segment(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced different segments: %#v != %#v", i, got, first)
		}
	}
}

func TestSegmentOrdinals(t *testing.T) {
	s := newTestSegmenter()
	got := s.Segment("Sarah: a\nMike: b\nSarah: c\nMike: d\nNarrator: e")

	for i, seg := range got {
		if seg.Ordinal != i {
			t.Errorf("segment %d has ordinal %d", i, seg.Ordinal)
		}
	}
}
