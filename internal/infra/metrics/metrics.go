package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons reported on frames_skipped_total.
const (
	SkipNoContent   = "no_content"
	SkipDataSource  = "data_source_error"
	SkipSinkFailure = "sink_error"
)

// Metrics holds the display's Prometheus instruments.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	Ticks               prometheus.Counter
	FramesRendered      *prometheus.CounterVec
	FramesSkipped       *prometheus.CounterVec
	ContentLoads        *prometheus.CounterVec
	ContentLoadErrors   *prometheus.CounterVec
	ActiveCategoryIndex prometheus.Gauge
}

// New registers all instruments on a fresh registry so tests and binaries don't share global state.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "oftheday_ticks_total",
			Help: "Total number of manager ticks",
		}),

		FramesRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oftheday_frames_rendered_total",
			Help: "Frames handed to the render sink by category",
		}, []string{"category"}),

		FramesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oftheday_frames_skipped_total",
			Help: "Ticks that produced no frame, by category and reason",
		}, []string{"category", "reason"}),

		ContentLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oftheday_content_loads_total",
			Help: "Yearly data loads per category",
		}, []string{"category"}),

		ContentLoadErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oftheday_content_load_errors_total",
			Help: "Failed yearly data loads per category",
		}, []string{"category"}),

		ActiveCategoryIndex: factory.NewGauge(prometheus.GaugeOpts{
			Name: "oftheday_active_category_index",
			Help: "Index of the category currently in its rotation slot",
		}),
	}
}

func (m *Metrics) Tick(activeIndex int) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.ActiveCategoryIndex.Set(float64(activeIndex))
}

func (m *Metrics) Rendered(category string) {
	if m == nil {
		return
	}
	m.FramesRendered.WithLabelValues(category).Inc()
}

func (m *Metrics) Skipped(category, reason string) {
	if m == nil {
		return
	}
	m.FramesSkipped.WithLabelValues(category, reason).Inc()
}

func (m *Metrics) Loaded(category string, err error) {
	if m == nil {
		return
	}
	m.ContentLoads.WithLabelValues(category).Inc()
	if err != nil {
		m.ContentLoadErrors.WithLabelValues(category).Inc()
	}
}
