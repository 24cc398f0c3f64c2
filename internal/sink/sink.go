// Package sink defines where the runner's transcript goes. The runner
// formats every line itself; a Sink only decides how a line of a given
// kind is rendered and delivered.
package sink

import (
	"fmt"
	"io"
	"sync"
)

// Kind classifies a transcript line so sinks can style it.
type Kind int

const (
	// Info is a neutral line, e.g. "No tests registered".
	Info Kind = iota
	// Separator is a line of repeated separator characters.
	Separator
	// Banner is a suite or unit banner: title, BEGIN, END, ALL TESTS DONE.
	Banner
	// Pass is the result line of a passing unit.
	Pass
	// Fail is the result line of a failing unit.
	Fail
)

var kindNames = [...]string{"info", "separator", "banner", "pass", "fail"}

// String returns the lower-case kind name used in structured payloads.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Sink receives pre-formatted transcript lines. Delivery failures are the
// sink's own concern; Line never reports them to the runner.
type Sink interface {
	Line(kind Kind, text string)
}

// Writer writes each line verbatim to an io.Writer.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a plain-text sink over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Line implements Sink.
func (s *Writer) Line(_ Kind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, text+"\n")
}

// Multi fans each line out to all sinks in order.
type Multi []Sink

// Line implements Sink.
func (m Multi) Line(kind Kind, text string) {
	for _, s := range m {
		s.Line(kind, text)
	}
}

// Discard drops every line.
var Discard Sink = discard{}

type discard struct{}

func (discard) Line(Kind, string) {}
