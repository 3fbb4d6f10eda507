package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"oftheday_display/internal/app"
	"oftheday_display/internal/domain/ofday"
	"oftheday_display/internal/domain/rotation"
	"oftheday_display/internal/infra/config"
	"oftheday_display/internal/infra/database"
	"oftheday_display/internal/infra/datafile"
	"oftheday_display/internal/infra/logger"
	"oftheday_display/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// loadConfig loads configuration, sets up logging to logOut and reports non-fatal config warnings.
func loadConfig(logOut io.Writer) (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	logger.Log.SetOutput(logOut)
	for _, w := range cfg.Warnings() {
		logger.Log.Warn(w)
	}
	logger.Log.WithFields(logrus.Fields{
		"config":      cfg.ConfigPath,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"timezone":    cfg.Timezone,
	}).Info("Configuration loaded")
	return cfg, nil
}

// components is everything the commands share: the rotation core plus its content sources.
type components struct {
	registry *ofday.Registry
	clock    *rotation.Clock
	sources  map[string]ofday.ContentSource
	files    map[string]string // category key -> data file, for the watcher
	store    *app.DailyContentStore
	db       *sql.DB
}

func (c *components) Close() {
	if c.db != nil {
		c.db.Close()
	}
}

func buildComponents(ctx context.Context, cfg *config.AppConfig, m *metrics.Metrics) (*components, error) {
	log := logger.Component("wiring")

	registry, err := ofday.NewRegistry(cfg.OfTheDay.CategoryConfigs(), cfg.OfTheDay.CategoryOrder)
	if err != nil {
		return nil, err
	}
	for _, key := range registry.Skipped() {
		log.WithField("category", key).Warn("Category in category_order is unknown or disabled, skipping")
	}

	clock, err := rotation.NewClock(cfg.OfTheDay.SubtitleInterval(), cfg.OfTheDay.DisplayInterval())
	if err != nil {
		return nil, err
	}

	c := &components{
		registry: registry,
		clock:    clock,
		sources:  make(map[string]ofday.ContentSource, registry.Len()),
		files:    make(map[string]string),
	}

	var repo *database.ContentRepository
	for _, cat := range registry.Enabled() {
		switch cat.Source {
		case ofday.SourceDatabase:
			if repo == nil {
				if c.db, err = openDatabase(ctx, cfg); err != nil {
					return nil, err
				}
				repo = database.NewContentRepository(c.db, cfg.DatabaseDriver, logrus.NewEntry(logger.Log))
			}
			c.sources[cat.Key] = repo.Source(cat.Key)
		default:
			src := datafile.NewFileSource(cat.Key, datafile.ResolvePath(cfg.ConfigPath, cat.DataFile), logrus.NewEntry(logger.Log))
			c.sources[cat.Key] = src
			c.files[cat.Key] = src.Path()
		}
	}

	c.store = app.NewDailyContentStore(c.sources, logrus.NewEntry(logger.Log), m)
	return c, nil
}

func openDatabase(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, ofday.NewConfigError("DATABASE_URL is required for database-backed categories")
	}
	db, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	logger.Log.WithField("driver", cfg.DatabaseDriver).Info("Database connection established successfully")
	return db, nil
}
