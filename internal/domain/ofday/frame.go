// internal/domain/ofday/frame.go
package ofday

import (
	"context"
	"errors"
	"time"
)

// Frame is the render instruction handed to a Sink.
type Frame struct {
	CategoryKey         string    `json:"category_key"`
	CategoryDisplayName string    `json:"category_display_name"`
	Title               string    `json:"title"`
	ShownText           string    `json:"shown_text"`
	Choice              Choice    `json:"choice"`
	DayOfYear           int       `json:"day_of_year"`
	RenderedAt          time.Time `json:"rendered_at"`
}

// SameContent reports whether two frames would draw the same thing.
func (f Frame) SameContent(other Frame) bool {
	return f.CategoryKey == other.CategoryKey &&
		f.CategoryDisplayName == other.CategoryDisplayName &&
		f.Title == other.Title &&
		f.ShownText == other.ShownText &&
		f.Choice == other.Choice &&
		f.DayOfYear == other.DayOfYear
}

// Sink draws frames. It is called at most once per manager tick and must not block for long.
type Sink interface {
	Render(ctx context.Context, frame Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, frame Frame) error

func (f SinkFunc) Render(ctx context.Context, frame Frame) error {
	return f(ctx, frame)
}

// MultiSink fans a frame out to every sink; all sinks are called even if one fails.
type MultiSink []Sink

func (m MultiSink) Render(ctx context.Context, frame Frame) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Render(ctx, frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
