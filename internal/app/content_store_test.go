package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"oftheday_display/internal/domain/ofday"
	"oftheday_display/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type countingSource struct {
	mu     sync.Mutex
	loads  int
	yearly ofday.Yearly
	err    error
}

func (c *countingSource) Load(ctx context.Context) (ofday.Yearly, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	if c.err != nil {
		return nil, c.err
	}
	return c.yearly, nil
}

func (c *countingSource) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

func TestStoreGet_LoadsOnceAndIsIdempotent(t *testing.T) {
	t.Parallel()

	src := &countingSource{yearly: ofday.Yearly{
		100: {Title: "Serendipity", Subtitle: "noun", Description: "a happy accident"},
		101: {Title: "Petrichor", Description: "smell of rain"},
	}}
	m := metrics.New()
	store := NewDailyContentStore(map[string]ofday.ContentSource{"word": src}, nil, m)
	ctx := context.Background()

	first, err := store.Get(ctx, "word", 100)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := store.Get(ctx, "word", 100)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Fatalf("records differ: %+v vs %+v", first, second)
	}
	if src.Loads() != 1 {
		t.Fatalf("expected exactly one load, got %d", src.Loads())
	}

	// A new day only moves the cache key; the yearly data is not reloaded.
	next, err := store.Get(ctx, "word", 101)
	if err != nil {
		t.Fatalf("Get day 101: %v", err)
	}
	if next.Title != "Petrichor" {
		t.Fatalf("unexpected record for day 101: %+v", next)
	}
	if src.Loads() != 1 {
		t.Fatalf("day change must not reload, loads=%d", src.Loads())
	}
	if got := testutil.ToFloat64(m.ContentLoads.WithLabelValues("word")); got != 1 {
		t.Fatalf("content loads metric = %v, want 1", got)
	}
}

func TestStoreGet_MissingDayIsEmpty(t *testing.T) {
	t.Parallel()

	src := &countingSource{yearly: ofday.Yearly{1: {Title: "x", Subtitle: "y"}}}
	store := NewDailyContentStore(map[string]ofday.ContentSource{"word": src}, nil, nil)

	rec, err := store.Get(context.Background(), "word", 200)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rec.IsEmpty() {
		t.Fatalf("expected empty record, got %+v", rec)
	}

	for _, day := range []int{0, 367, -1} {
		rec, err := store.Get(context.Background(), "word", day)
		if err != nil || !rec.IsEmpty() {
			t.Fatalf("day %d: expected empty record without error, got %+v, %v", day, rec, err)
		}
	}
}

func TestStoreGet_FailureIsRememberedForTheDay(t *testing.T) {
	t.Parallel()

	src := &countingSource{err: errors.New("unexpected token")}
	store := NewDailyContentStore(map[string]ofday.ContentSource{"verse": src}, nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec, err := store.Get(ctx, "verse", 50)
		if !errors.Is(err, ofday.ErrDataSource) {
			t.Fatalf("expected ErrDataSource, got %v", err)
		}
		var dsErr *ofday.DataSourceError
		if !errors.As(err, &dsErr) || dsErr.Category != "verse" {
			t.Fatalf("expected DataSourceError for verse, got %v", err)
		}
		if !rec.IsEmpty() {
			t.Fatalf("expected empty record on failure")
		}
	}
	if src.Loads() != 1 {
		t.Fatalf("failed load retried within the day: loads=%d", src.Loads())
	}

	// Next day retries.
	_, _ = store.Get(ctx, "verse", 51)
	if src.Loads() != 2 {
		t.Fatalf("expected a retry on the next day, loads=%d", src.Loads())
	}
}

func TestStoreGet_UnknownCategory(t *testing.T) {
	t.Parallel()

	store := NewDailyContentStore(nil, nil, nil)
	_, err := store.Get(context.Background(), "nope", 10)
	if !errors.Is(err, ErrUnknownCategory) || !errors.Is(err, ofday.ErrDataSource) {
		t.Fatalf("expected unknown category data source error, got %v", err)
	}
}

func TestStoreInvalidate(t *testing.T) {
	t.Parallel()

	src := &countingSource{yearly: ofday.Yearly{10: {Title: "old", Subtitle: "a"}}}
	store := NewDailyContentStore(map[string]ofday.ContentSource{"word": src}, nil, nil)
	ctx := context.Background()

	if rec, _ := store.Get(ctx, "word", 10); rec.Title != "old" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	src.mu.Lock()
	src.yearly = ofday.Yearly{10: {Title: "new", Subtitle: "b"}}
	src.mu.Unlock()
	store.Invalidate("word")

	if rec, _ := store.Get(ctx, "word", 10); rec.Title != "new" {
		t.Fatalf("expected reloaded record, got %+v", rec)
	}
	if src.Loads() != 2 {
		t.Fatalf("expected reload after invalidate, loads=%d", src.Loads())
	}
}

func TestStorePrewarm(t *testing.T) {
	t.Parallel()

	store := NewDailyContentStore(map[string]ofday.ContentSource{
		"word":  &countingSource{yearly: ofday.Yearly{5: {Title: "w", Subtitle: "s"}}},
		"verse": &countingSource{yearly: ofday.Yearly{}},
		"fact":  &countingSource{err: errors.New("broken")},
	}, nil, nil)

	results := store.Prewarm(context.Background(), []string{"word", "verse", "fact"}, 5)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].HasContent || results[0].Err != nil {
		t.Fatalf("word: %+v", results[0])
	}
	if results[1].HasContent || results[1].Err != nil {
		t.Fatalf("verse: %+v", results[1])
	}
	if results[2].HasContent || results[2].Err == nil {
		t.Fatalf("fact: %+v", results[2])
	}
}

func TestStoreConcurrentGetAndInvalidate(t *testing.T) {
	t.Parallel()

	src := &countingSource{yearly: ofday.Yearly{7: {Title: "t", Subtitle: "s"}}}
	store := NewDailyContentStore(map[string]ofday.ContentSource{"word": src}, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i == 0 && j%10 == 0 {
					store.Invalidate("word")
					continue
				}
				rec, err := store.Get(ctx, "word", 7)
				if err != nil || rec.Title != "t" || rec.Subtitle != "s" {
					t.Errorf("torn or missing record: %+v, %v", rec, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestStorePeek_LeavesLiveEntryAlone(t *testing.T) {
	t.Parallel()

	src := &countingSource{yearly: ofday.Yearly{10: {Title: "ten", Subtitle: "a"}, 12: {Title: "twelve", Subtitle: "b"}}}
	store := NewDailyContentStore(map[string]ofday.ContentSource{"word": src}, nil, nil)
	ctx := context.Background()

	if rec, err := store.Get(ctx, "word", 10); err != nil || rec.Title != "ten" {
		t.Fatalf("Get = %+v, %v", rec, err)
	}
	if rec, err := store.Peek(ctx, "word", 12); err != nil || rec.Title != "twelve" {
		t.Fatalf("Peek = %+v, %v", rec, err)
	}
	if rec, err := store.Peek(ctx, "word", 400); err != nil || !rec.IsEmpty() {
		t.Fatalf("Peek out of range = %+v, %v", rec, err)
	}
	e, ok := cachedEntry(store.today, "word")
	if !ok || e.day != 10 || e.record.Title != "ten" {
		t.Fatalf("live entry replaced by Peek: %+v", e)
	}
	if src.Loads() != 1 {
		t.Fatalf("expected one load, got %d", src.Loads())
	}
}

func TestStorePeek_ReportsRememberedFailure(t *testing.T) {
	t.Parallel()

	src := &countingSource{err: errors.New("unexpected token")}
	store := NewDailyContentStore(map[string]ofday.ContentSource{"verse": src}, nil, nil)
	ctx := context.Background()

	if _, err := store.Get(ctx, "verse", 50); !errors.Is(err, ofday.ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
	for _, day := range []int{51, 52, 51} {
		if _, err := store.Peek(ctx, "verse", day); !errors.Is(err, ofday.ErrDataSource) {
			t.Fatalf("Peek day %d: expected ErrDataSource, got %v", day, err)
		}
		if _, err := store.Get(ctx, "verse", 50); !errors.Is(err, ofday.ErrDataSource) {
			t.Fatalf("Get after Peek: expected ErrDataSource, got %v", err)
		}
	}
	if src.Loads() != 1 {
		t.Fatalf("broken source read %d times, want 1", src.Loads())
	}

	// Fixing the file and invalidating clears the failure.
	src.mu.Lock()
	src.err = nil
	src.yearly = ofday.Yearly{51: {Title: "fixed", Subtitle: "s"}}
	src.mu.Unlock()
	store.Invalidate("verse")
	if rec, err := store.Peek(ctx, "verse", 51); err != nil || rec.Title != "fixed" {
		t.Fatalf("Peek after invalidate = %+v, %v", rec, err)
	}
}
