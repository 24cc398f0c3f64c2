package testutil

import (
	"strings"
	"sync"

	"github.com/specialistvlad/tidrun/internal/sink"
)

// Line is one transcript line captured by RecordingSink.
type Line struct {
	Kind sink.Kind
	Text string
}

// RecordingSink keeps every line it receives, for transcript assertions.
type RecordingSink struct {
	mu    sync.Mutex
	lines []Line
}

// Line implements sink.Sink.
func (s *RecordingSink) Line(kind sink.Kind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, Line{Kind: kind, Text: text})
}

// Lines returns a copy of the captured lines.
func (s *RecordingSink) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Texts returns the captured text, optionally skipping separator lines.
func (s *RecordingSink) Texts(withSeparators bool) []string {
	var out []string
	for _, l := range s.Lines() {
		if !withSeparators && l.Kind == sink.Separator {
			continue
		}
		out = append(out, l.Text)
	}
	return out
}

// String joins all captured text with newlines.
func (s *RecordingSink) String() string {
	return strings.Join(s.Texts(true), "\n")
}
