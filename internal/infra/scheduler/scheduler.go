package scheduler

import (
	"context"
	"fmt"
	"time"

	"oftheday_display/internal/app"
	"oftheday_display/internal/domain/ofday"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Display is what the tick loop drives.
type Display interface {
	Tick(ctx context.Context, now time.Time) (ofday.Frame, bool, error)
	Categories() []ofday.CategoryConfig
	DayOfYear(now time.Time) int
}

// Prewarmer resolves a day's content ahead of the first tick that needs it.
type Prewarmer interface {
	Prewarm(ctx context.Context, keys []string, day int) []app.PrewarmResult
}

// DisplayScheduler runs the refresh tick on a fixed cadence (gocron, never overlapping) and the
// day-rollover job on a cron spec in the display's timezone.
type DisplayScheduler struct {
	display      Display
	prewarmer    Prewarmer
	logger       *logrus.Entry
	location     *time.Location
	refresh      time.Duration
	rolloverSpec string
	now          func() time.Time

	ticker gocron.Scheduler
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewDisplayScheduler(
	display Display,
	prewarmer Prewarmer,
	logger *logrus.Entry,
	location *time.Location,
	refresh time.Duration, // e.g. 1s, the panel refresh cadence
	rolloverSpec string, // e.g. "0 0 * * *" (midnight daily)
) (*DisplayScheduler, error) {
	if refresh <= 0 {
		return nil, ofday.NewConfigError("refresh interval must be positive, got %s", refresh)
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	logger = logger.WithField("component", "scheduler")

	ticker, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, fmt.Errorf("failed to create tick scheduler: %w", err)
	}

	return &DisplayScheduler{
		display:      display,
		prewarmer:    prewarmer,
		logger:       logger,
		location:     location,
		refresh:      refresh,
		rolloverSpec: rolloverSpec,
		now:          time.Now,
		ticker:       ticker,
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
	}, nil
}

// Start registers both jobs and starts them. The first tick runs immediately.
func (s *DisplayScheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting display scheduler...")
	s.ctx, s.cancel = context.WithCancel(ctx)

	_, err := s.ticker.NewJob(
		gocron.DurationJob(s.refresh),
		gocron.NewTask(s.tick),
		gocron.WithName("display-tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("could not add display tick job: %w", err)
	}

	if s.prewarmer != nil && s.rolloverSpec != "" {
		if _, err := s.cron.AddFunc(s.rolloverSpec, s.rollover); err != nil {
			return fmt.Errorf("could not add rollover cron job %q: %w", s.rolloverSpec, err)
		}
	}

	s.ticker.Start()
	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"refresh":  s.refresh.String(),
		"rollover": s.rolloverSpec,
		"timezone": s.location.String(),
	}).Info("Display scheduler started")
	return nil
}

// Stop halts both schedulers and waits for running jobs.
func (s *DisplayScheduler) Stop() error {
	s.logger.Info("Stopping display scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	cronCtx := s.cron.Stop()
	err := s.ticker.Shutdown()
	<-cronCtx.Done()
	if err != nil {
		return fmt.Errorf("shutdown tick scheduler: %w", err)
	}
	s.logger.Info("Display scheduler gracefully stopped.")
	return nil
}

func (s *DisplayScheduler) baseContext() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

func (s *DisplayScheduler) tick() {
	now := s.now()
	frame, rendered, err := s.display.Tick(s.baseContext(), now)
	if err != nil {
		s.logger.WithError(err).Warn("Display tick failed")
		return
	}
	if rendered {
		s.logger.WithFields(logrus.Fields{
			"category": frame.CategoryKey,
			"choice":   frame.Choice.String(),
		}).Trace("Frame rendered")
	}
}

func (s *DisplayScheduler) rollover() {
	now := s.now()
	day := s.display.DayOfYear(now)
	cats := s.display.Categories()
	keys := make([]string, 0, len(cats))
	for _, c := range cats {
		keys = append(keys, c.Key)
	}

	logCtx := s.logger.WithFields(logrus.Fields{
		"day_of_year": day,
		"date":        now.In(s.location).Format("2006-01-02"),
	})
	logCtx.Info("Day rollover: resolving today's content")

	withContent := 0
	for _, r := range s.prewarmer.Prewarm(s.baseContext(), keys, day) {
		entry := logCtx.WithField("category", r.Category)
		switch {
		case r.Err != nil:
			entry.WithError(r.Err).Warn("Category unavailable today")
		case !r.HasContent:
			entry.Info("No content today for category")
		default:
			withContent++
		}
	}
	logCtx.WithFields(logrus.Fields{
		"categories":   len(keys),
		"with_content": withContent,
	}).Info("Day rollover complete")
}
