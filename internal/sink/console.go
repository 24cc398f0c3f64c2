package sink

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorMode controls whether the console sink emits ANSI styling.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a user supplied color mode. The empty string
// means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(s)); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	default:
		return "", fmt.Errorf("invalid color mode %q: must be 'auto', 'always' or 'never'", s)
	}
}

// Console renders lines with terminal colors: green results for passing
// units, red for failures, bold banners and dim separators.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	styles map[Kind]lipgloss.Style
}

// NewConsole returns a console sink writing to w. In auto mode the color
// profile is detected from w.
func NewConsole(w io.Writer, mode ColorMode) *Console {
	renderer := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		renderer.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &Console{
		w: w,
		styles: map[Kind]lipgloss.Style{
			Info:      renderer.NewStyle().Foreground(lipgloss.Color("12")),
			Separator: renderer.NewStyle().Faint(true),
			Banner:    renderer.NewStyle().Bold(true),
			Pass:      renderer.NewStyle().Foreground(lipgloss.Color("10")),
			Fail:      renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		},
	}
}

// Line implements Sink.
func (c *Console) Line(kind Kind, text string) {
	style, ok := c.styles[kind]
	if ok {
		text = style.Render(text)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.w, text+"\n")
}
