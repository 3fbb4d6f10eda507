// Package terminal draws frames as a bordered panel on a terminal, standing in for the LED matrix.
package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"oftheday_display/internal/domain/ofday"

	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultWidth = 48
	clearScreen  = "\x1b[H\x1b[2J"
)

type Option func(*Sink)

// WithWidth sets the panel's inner width in cells.
func WithWidth(w int) Option {
	return func(s *Sink) {
		if w > 0 {
			s.width = w
		}
	}
}

// WithClearScreen clears the terminal before each redraw.
func WithClearScreen(on bool) Option {
	return func(s *Sink) { s.clear = on }
}

// Sink redraws only when the frame's visible content changes, so a 1s tick doesn't flicker the panel.
type Sink struct {
	out   io.Writer
	width int
	clear bool
	theme theme

	mu   sync.Mutex
	last *ofday.Frame
}

func NewSink(out io.Writer, opts ...Option) *Sink {
	s := &Sink{out: out, width: DefaultWidth}
	for _, opt := range opts {
		opt(s)
	}
	s.theme = newTheme(lipgloss.NewRenderer(out), s.width)
	return s
}

func (s *Sink) Render(_ context.Context, frame ofday.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last != nil && s.last.SameContent(frame) {
		return nil
	}

	var b strings.Builder
	if s.clear {
		b.WriteString(clearScreen)
	}
	b.WriteString(s.View(frame))
	b.WriteString("\n")
	if _, err := io.WriteString(s.out, b.String()); err != nil {
		return fmt.Errorf("draw panel: %w", err)
	}
	s.last = &frame
	return nil
}

// View renders the panel for a frame without writing it.
func (s *Sink) View(frame ofday.Frame) string {
	t := s.theme
	lines := []string{
		t.Header.Render(frame.CategoryDisplayName),
		t.Title.Render(frame.Title),
	}
	switch frame.Choice {
	case ofday.ChoiceSubtitle:
		lines = append(lines, t.Subtitle.Render(frame.ShownText))
	case ofday.ChoiceDescription:
		lines = append(lines, t.Description.Render(frame.ShownText))
	}
	lines = append(lines, t.Footer.Render(fmt.Sprintf("day %d · %s", frame.DayOfYear, frame.Choice)))
	return t.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
