package terminal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"oftheday_display/internal/domain/ofday"
)

func frame(shown string, choice ofday.Choice) ofday.Frame {
	return ofday.Frame{
		CategoryKey:         "word",
		CategoryDisplayName: "Word of the Day",
		Title:               "Petrichor",
		ShownText:           shown,
		Choice:              choice,
		DayOfYear:           200,
	}
}

func TestSink_RedrawsOnlyOnChange(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSink(&buf)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Render(ctx, frame("noun", ofday.ChoiceSubtitle)); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if n := strings.Count(buf.String(), "Petrichor"); n != 1 {
		t.Fatalf("expected a single draw, got %d", n)
	}

	if err := s.Render(ctx, frame("the smell of rain", ofday.ChoiceDescription)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if n := strings.Count(out, "Petrichor"); n != 2 {
		t.Fatalf("expected a redraw after the text changed, got %d draws", n)
	}
	if !strings.Contains(out, "the smell of rain") || !strings.Contains(out, "DESCRIPTION") {
		t.Fatalf("description panel missing from output:\n%s", out)
	}
}

func TestSink_RedrawsWhenOnlyTheFieldFlips(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSink(&buf)
	ctx := context.Background()

	if err := s.Render(ctx, frame("same words", ofday.ChoiceSubtitle)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := s.Render(ctx, frame("same words", ofday.ChoiceDescription)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if n := strings.Count(out, "Petrichor"); n != 2 {
		t.Fatalf("expected a redraw when the shown field changed, got %d draws", n)
	}
	if !strings.Contains(out, "SUBTITLE") || !strings.Contains(out, "DESCRIPTION") {
		t.Fatalf("footer did not follow the field:\n%s", out)
	}
}

func TestSink_TitleOnlyOmitsBody(t *testing.T) {
	t.Parallel()

	s := NewSink(&bytes.Buffer{}, WithWidth(30))
	view := s.View(frame("", ofday.ChoiceTitleOnly))
	if !strings.Contains(view, "Word of the Day") || !strings.Contains(view, "TITLE_ONLY") {
		t.Fatalf("unexpected view:\n%s", view)
	}
	if !strings.Contains(view, "╭") {
		t.Fatalf("expected a rounded border:\n%s", view)
	}
}

func TestSink_ClearScreen(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSink(&buf, WithClearScreen(true))
	if err := s.Render(context.Background(), frame("noun", ofday.ChoiceSubtitle)); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), clearScreen) {
		t.Fatalf("expected clear-screen prefix")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("tty gone") }

func TestSink_WriteErrorRetriesNextTick(t *testing.T) {
	t.Parallel()

	s := NewSink(failingWriter{})
	if err := s.Render(context.Background(), frame("noun", ofday.ChoiceSubtitle)); err == nil {
		t.Fatalf("expected write error")
	}
	if s.last != nil {
		t.Fatalf("a failed draw must not be remembered")
	}
}
