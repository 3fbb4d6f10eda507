package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.Tick(1)
	m.Rendered("word")
	m.Skipped("word", SkipNoContent)
	m.Loaded("word", errors.New("x"))
}

func TestCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.Tick(2)
	m.Tick(0)
	m.Rendered("word")
	m.Loaded("word", nil)
	m.Loaded("verse", errors.New("bad file"))

	if got := testutil.ToFloat64(m.Ticks); got != 2 {
		t.Fatalf("ticks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ActiveCategoryIndex); got != 0 {
		t.Fatalf("active index = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.FramesRendered.WithLabelValues("word")); got != 1 {
		t.Fatalf("rendered = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ContentLoadErrors.WithLabelValues("verse")); got != 1 {
		t.Fatalf("load errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ContentLoadErrors.WithLabelValues("word")); got != 0 {
		t.Fatalf("word load errors = %v, want 0", got)
	}
}
