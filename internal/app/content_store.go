// internal/app/content_store.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"oftheday_display/internal/domain/ofday"
	"oftheday_display/internal/infra/metrics"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// ErrUnknownCategory is wrapped in a DataSourceError when no source is registered for a key.
var ErrUnknownCategory = fmt.Errorf("no content source registered for category")

// dailyEntry is replaced as a whole, never mutated, so readers never see a torn record/day pair.
type dailyEntry struct {
	day    int
	record ofday.Record
	err    error
}

// DailyContentStore resolves "today's" record per category. Each category's yearly data is loaded
// once and kept until Invalidate; the per-day entry is recomputed only when the day changes.
// A failed load is remembered per category with the day it happened on, apart from the live entry,
// so reads for other days never cause the broken source to be read again.
type DailyContentStore struct {
	sources map[string]ofday.ContentSource
	yearly  *cache.Cache // category key -> ofday.Yearly
	today   *cache.Cache // category key -> *dailyEntry
	failed  *cache.Cache // category key -> *dailyEntry holding the load error
	mu      sync.Mutex   // guards the miss path against a concurrent Invalidate
	logger  *logrus.Entry
	metrics *metrics.Metrics
}

func NewDailyContentStore(sources map[string]ofday.ContentSource, logger *logrus.Entry, m *metrics.Metrics) *DailyContentStore {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &DailyContentStore{
		sources: sources,
		yearly:  cache.New(cache.NoExpiration, 0),
		today:   cache.New(cache.NoExpiration, 0),
		failed:  cache.New(cache.NoExpiration, 0),
		logger:  logger.WithField("component", "content_store"),
		metrics: m,
	}
}

// Get returns the record for category key on day. Days without content yield ofday.EmptyRecord.
// A load failure returns EmptyRecord plus a *ofday.DataSourceError and is remembered for that day,
// so a broken category is not re-read on every tick.
func (s *DailyContentStore) Get(ctx context.Context, key string, day int) (ofday.Record, error) {
	if e, ok := cachedEntry(s.today, key); ok && e.day == day {
		return e.record, e.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have resolved it while we waited.
	if e, ok := cachedEntry(s.today, key); ok && e.day == day {
		return e.record, e.err
	}

	entry := &dailyEntry{day: day, record: ofday.EmptyRecord}
	if ofday.ValidDay(day) {
		if f, ok := cachedEntry(s.failed, key); ok && f.day == day {
			entry.err = f.err
		} else if yearly, err := s.loadLocked(ctx, key, day); err != nil {
			entry.err = err
		} else {
			entry.record = yearly.Lookup(day)
		}
	}

	s.today.Set(key, entry, cache.NoExpiration)

	if entry.err == nil {
		s.logger.WithFields(logrus.Fields{
			"category":    key,
			"day_of_year": day,
			"has_content": !entry.record.IsEmpty(),
		}).Debug("Resolved content for day")
	}
	return entry.record, entry.err
}

// Peek looks up day for key without replacing the live entry Get keeps. A category whose last load
// failed reports that failure instead of being read again.
func (s *DailyContentStore) Peek(ctx context.Context, key string, day int) (ofday.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := cachedEntry(s.failed, key); ok {
		return ofday.EmptyRecord, f.err
	}
	if !ofday.ValidDay(day) {
		return ofday.EmptyRecord, nil
	}
	yearly, err := s.loadLocked(ctx, key, day)
	if err != nil {
		return ofday.EmptyRecord, err
	}
	return yearly.Lookup(day), nil
}

// Invalidate drops the loaded data, today's entry and any remembered failure for key; the next Get reloads.
func (s *DailyContentStore) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.yearly.Delete(key)
	s.today.Delete(key)
	s.failed.Delete(key)
	s.logger.WithField("category", key).Info("Content cache invalidated")
}

// PrewarmResult summarises one category after a Prewarm.
type PrewarmResult struct {
	Category   string
	HasContent bool
	Err        error
}

// Prewarm resolves day for every key and reports what is available.
func (s *DailyContentStore) Prewarm(ctx context.Context, keys []string, day int) []PrewarmResult {
	results := make([]PrewarmResult, 0, len(keys))
	for _, key := range keys {
		rec, err := s.Get(ctx, key, day)
		results = append(results, PrewarmResult{
			Category:   key,
			HasContent: err == nil && !rec.IsEmpty(),
			Err:        err,
		})
	}
	return results
}

func cachedEntry(c *cache.Cache, key string) (*dailyEntry, bool) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	e, ok := v.(*dailyEntry)
	return e, ok
}

// loadLocked returns key's yearly data, loading it on first use. A failure is remembered against day.
func (s *DailyContentStore) loadLocked(ctx context.Context, key string, day int) (ofday.Yearly, error) {
	if v, ok := s.yearly.Get(key); ok {
		if y, ok := v.(ofday.Yearly); ok {
			return y, nil
		}
	}

	src, ok := s.sources[key]
	if !ok || src == nil {
		err := &ofday.DataSourceError{Category: key, Err: ErrUnknownCategory}
		s.failed.Set(key, &dailyEntry{day: day, err: err}, cache.NoExpiration)
		return nil, err
	}

	logCtx := s.logger.WithField("category", key)
	yearly, err := src.Load(ctx)
	s.metrics.Loaded(key, err)
	if err != nil {
		var dsErr *ofday.DataSourceError
		if !errors.As(err, &dsErr) {
			err = &ofday.DataSourceError{Category: key, Err: err}
		}
		s.failed.Set(key, &dailyEntry{day: day, err: err}, cache.NoExpiration)
		logCtx.WithError(err).Error("Failed to load category content; category disabled until next day or reload")
		return nil, err
	}
	if yearly == nil {
		yearly = ofday.Yearly{}
	}

	s.yearly.Set(key, yearly, cache.NoExpiration)
	s.failed.Delete(key)
	logCtx.WithField("days", len(yearly)).Info("Category content loaded")
	return yearly, nil
}
