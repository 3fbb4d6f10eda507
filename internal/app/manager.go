// internal/app/manager.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"oftheday_display/internal/domain/ofday"
	"oftheday_display/internal/domain/rotation"
	"oftheday_display/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// ContentLookup is the part of DailyContentStore the manager needs.
type ContentLookup interface {
	Get(ctx context.Context, key string, day int) (ofday.Record, error)
	Peek(ctx context.Context, key string, day int) (ofday.Record, error)
}

// ManagerDeps wires the manager's collaborators.
type ManagerDeps struct {
	Registry *ofday.Registry
	Clock    *rotation.Clock
	Store    ContentLookup
	Sink     ofday.Sink
	Location *time.Location // day-of-year is computed in this zone; nil means UTC
	Start    time.Time      // rotation epoch
	Logger   *logrus.Entry
	Metrics  *metrics.Metrics
}

// OfTheDayManager turns a wall-clock instant into at most one frame for the sink.
// Its only mutable state is the content cache inside Store and the last frame kept for status queries.
type OfTheDayManager struct {
	registry *ofday.Registry
	clock    *rotation.Clock
	store    ContentLookup
	sink     ofday.Sink
	location *time.Location
	start    time.Time
	logger   *logrus.Entry
	metrics  *metrics.Metrics

	last       atomic.Pointer[ofday.Frame]
	lastActive atomic.Int64
}

func NewOfTheDayManager(deps ManagerDeps) (*OfTheDayManager, error) {
	if deps.Registry == nil || deps.Registry.Len() == 0 {
		return nil, ofday.NewConfigError("no enabled categories")
	}
	if deps.Clock == nil {
		return nil, ofday.NewConfigError("rotation clock is not configured")
	}
	if deps.Store == nil {
		return nil, ofday.NewConfigError("content store is not configured")
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	m := &OfTheDayManager{
		registry: deps.Registry,
		clock:    deps.Clock,
		store:    deps.Store,
		sink:     deps.Sink,
		location: loc,
		start:    deps.Start,
		logger:   logger.WithField("component", "of_the_day_manager"),
		metrics:  deps.Metrics,
	}
	m.lastActive.Store(-1)
	return m, nil
}

// Tick resolves the frame for now and hands it to the sink.
// It returns false when nothing was rendered: the active category has no content today or its data
// source is broken. Only a sink failure is returned as an error.
func (m *OfTheDayManager) Tick(ctx context.Context, now time.Time) (ofday.Frame, bool, error) {
	frame, ok, err := m.resolve(ctx, now, true)
	if err != nil {
		return ofday.Frame{}, false, err
	}
	if !ok {
		return ofday.Frame{}, false, nil
	}

	if m.sink != nil {
		if err := m.sink.Render(ctx, frame); err != nil {
			m.metrics.Skipped(frame.CategoryKey, metrics.SkipSinkFailure)
			m.logger.WithError(err).WithField("category", frame.CategoryKey).Error("Render sink failed")
			return frame, false, fmt.Errorf("render %s: %w", frame.CategoryKey, err)
		}
	}

	m.metrics.Rendered(frame.CategoryKey)
	m.last.Store(&frame)
	return frame, true, nil
}

// Preview computes what Tick would render at, without touching the sink, metrics or the live content entry.
func (m *OfTheDayManager) Preview(ctx context.Context, at time.Time) (ofday.Frame, bool, error) {
	return m.resolve(ctx, at, false)
}

// Current returns the most recently rendered frame.
func (m *OfTheDayManager) Current() (ofday.Frame, bool) {
	f := m.last.Load()
	if f == nil {
		return ofday.Frame{}, false
	}
	return *f, true
}

// Categories lists the enabled categories in rotation order.
func (m *OfTheDayManager) Categories() []ofday.CategoryConfig {
	return m.registry.Enabled()
}

// StartedAt is the rotation epoch.
func (m *OfTheDayManager) StartedAt() time.Time {
	return m.start
}

// DayOfYear returns the content slot for now in the manager's timezone.
func (m *OfTheDayManager) DayOfYear(now time.Time) int {
	return now.In(m.location).YearDay()
}

// TodayEntry is one category's content for a given day.
type TodayEntry struct {
	Category ofday.CategoryConfig
	Record   ofday.Record
	Err      error
}

// Today lists every enabled category's record for the day containing now.
func (m *OfTheDayManager) Today(ctx context.Context, now time.Time) []TodayEntry {
	day := m.DayOfYear(now)
	cats := m.registry.Enabled()
	entries := make([]TodayEntry, 0, len(cats))
	for _, cat := range cats {
		rec, err := m.store.Get(ctx, cat.Key, day)
		entries = append(entries, TodayEntry{Category: cat, Record: rec, Err: err})
	}
	return entries
}

func (m *OfTheDayManager) resolve(ctx context.Context, now time.Time, live bool) (ofday.Frame, bool, error) {
	elapsed := now.Sub(m.start)
	state, err := m.clock.At(elapsed, m.registry.Len())
	if err != nil {
		return ofday.Frame{}, false, err
	}
	cat := m.registry.At(state.CategoryIndex)
	day := m.DayOfYear(now)
	logCtx := m.logger.WithFields(logrus.Fields{
		"category":    cat.Key,
		"day_of_year": day,
		"field":       state.Field.String(),
	})

	if live {
		m.metrics.Tick(state.CategoryIndex)
		if prev := m.lastActive.Swap(int64(state.CategoryIndex)); prev != int64(state.CategoryIndex) {
			logCtx.Info("Rotated to category")
		}
	}

	lookup := m.store.Peek
	if live {
		lookup = m.store.Get
	}
	rec, err := lookup(ctx, cat.Key, day)
	if err != nil {
		if errors.Is(err, ofday.ErrDataSource) {
			if live {
				m.metrics.Skipped(cat.Key, metrics.SkipDataSource)
			}
			logCtx.WithError(err).Debug("Category unavailable, skipping tick")
			return ofday.Frame{}, false, nil
		}
		return ofday.Frame{}, false, fmt.Errorf("lookup %s day %d: %w", cat.Key, day, err)
	}
	if rec.IsEmpty() {
		if live {
			m.metrics.Skipped(cat.Key, metrics.SkipNoContent)
		}
		logCtx.Debug("No content for today, skipping tick")
		return ofday.Frame{}, false, nil
	}

	choice, text := rec.Resolve(state.Field)
	return ofday.Frame{
		CategoryKey:         cat.Key,
		CategoryDisplayName: cat.DisplayName,
		Title:               rec.Title,
		ShownText:           text,
		Choice:              choice,
		DayOfYear:           day,
		RenderedAt:          now,
	}, true, nil
}
