package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve on minimal device images

	"oftheday_display/internal/domain/ofday"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath      = "config.yaml"
	defaultTimezone        = "UTC"
	defaultRefreshInterval = 1
	defaultRolloverCron    = "0 0 * * *"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	ConfigPath     string
	LogLevel       string
	Environment    string
	Timezone       string
	TimezoneWarn   string // set when the configured zone was unknown and UTC was used instead
	Location       *time.Location
	DatabaseDriver string
	DatabaseURL    string
	HTTPAddr       string
	TelegramToken  string
	TelegramChatID int64
	TelegramAdmin  int64
	RolloverCron   string

	RefreshInterval time.Duration
	OfTheDay        OfTheDayConfig
}

// OfTheDayConfig is the rotation section of the config file.
type OfTheDayConfig struct {
	Enabled                bool                          `yaml:"enabled"`
	SubtitleRotateInterval int                           `yaml:"subtitle_rotate_interval"`
	DisplayRotateInterval  int                           `yaml:"display_rotate_interval"`
	CategoryOrder          []string                      `yaml:"category_order"`
	Categories             map[string]CategoryFileConfig `yaml:"categories"`
}

// CategoryFileConfig is one entry under of_the_day.categories.
type CategoryFileConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DataFile    string `yaml:"data_file"`
	DisplayName string `yaml:"display_name"`
	Source      string `yaml:"source"`
}

type fileConfig struct {
	Timezone string `yaml:"timezone"`
	Display  struct {
		RefreshInterval int `yaml:"refresh_interval"`
	} `yaml:"display"`
	OfTheDay OfTheDayConfig `yaml:"of_the_day"`
}

// SubtitleInterval is S.
func (c OfTheDayConfig) SubtitleInterval() time.Duration {
	return time.Duration(c.SubtitleRotateInterval) * time.Second
}

// DisplayInterval is D.
func (c OfTheDayConfig) DisplayInterval() time.Duration {
	return time.Duration(c.DisplayRotateInterval) * time.Second
}

// CategoryConfigs converts the file entries to domain configs.
func (c OfTheDayConfig) CategoryConfigs() map[string]ofday.CategoryConfig {
	out := make(map[string]ofday.CategoryConfig, len(c.Categories))
	for key, cat := range c.Categories {
		out[key] = ofday.CategoryConfig{
			Key:         key,
			Enabled:     cat.Enabled,
			DataFile:    cat.DataFile,
			DisplayName: cat.DisplayName,
			Source:      ofday.SourceKind(strings.ToLower(cat.Source)),
		}
	}
	return out
}

// Load reads environment variables (and .env if present), then the YAML/JSON config file they point to.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables; a missing .env is fine.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.ConfigPath = os.Getenv("CONFIG_PATH")
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = defaultConfigPath
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.DatabaseDriver = strings.ToLower(os.Getenv("DATABASE_DRIVER"))
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "sqlite"
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	var err error
	if cfg.TelegramChatID, err = parseOptionalID("TELEGRAM_CHAT_ID"); err != nil {
		return nil, err
	}
	if cfg.TelegramAdmin, err = parseOptionalID("TELEGRAM_ADMIN_ID"); err != nil {
		return nil, err
	}

	cfg.RolloverCron = os.Getenv("ROLLOVER_CRON")
	if cfg.RolloverCron == "" {
		cfg.RolloverCron = defaultRolloverCron
	}

	raw, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		return nil, ofday.NewConfigError("cannot read %s: %v", cfg.ConfigPath, err)
	}
	if err := cfg.apply(raw); err != nil {
		return nil, err
	}

	if tz := os.Getenv("TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}
	cfg.bindTimezone()

	return cfg, nil
}

// apply parses the config file body. JSON is accepted as well since it is valid YAML.
func (c *AppConfig) apply(raw []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return ofday.NewConfigError("cannot parse %s: %v", c.ConfigPath, err)
	}

	c.Timezone = fc.Timezone
	refresh := fc.Display.RefreshInterval
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}
	c.RefreshInterval = time.Duration(refresh) * time.Second
	c.OfTheDay = fc.OfTheDay

	return c.OfTheDay.Validate()
}

// Validate checks what can be checked without building the registry or clock.
func (c OfTheDayConfig) Validate() error {
	var errs []error
	if c.SubtitleRotateInterval <= 0 {
		errs = append(errs, ofday.NewConfigError("subtitle_rotate_interval must be > 0, got %d", c.SubtitleRotateInterval))
	}
	if c.DisplayRotateInterval <= 0 {
		errs = append(errs, ofday.NewConfigError("display_rotate_interval must be > 0, got %d", c.DisplayRotateInterval))
	}
	if len(c.CategoryOrder) == 0 {
		errs = append(errs, ofday.NewConfigError("category_order is empty"))
	}
	for key, cat := range c.Categories {
		switch ofday.SourceKind(strings.ToLower(cat.Source)) {
		case "", ofday.SourceFile:
			if cat.Enabled && cat.DataFile == "" {
				errs = append(errs, ofday.NewConfigError("category %q has no data_file", key))
			}
		case ofday.SourceDatabase:
		default:
			errs = append(errs, ofday.NewConfigError("category %q has unknown source %q", key, cat.Source))
		}
	}
	return errors.Join(errs...)
}

// Warnings lists non-fatal oddities worth logging at startup.
func (c *AppConfig) Warnings() []string {
	var warns []string
	if c.TimezoneWarn != "" {
		warns = append(warns, c.TimezoneWarn)
	}
	s, d := c.OfTheDay.SubtitleRotateInterval, c.OfTheDay.DisplayRotateInterval
	if s > 0 && d > 0 && d%s != 0 {
		warns = append(warns, fmt.Sprintf("display_rotate_interval (%ds) is not a multiple of subtitle_rotate_interval (%ds); phase boundaries will not line up with category slots", d, s))
	}
	return warns
}

func (c *AppConfig) bindTimezone() {
	tz := c.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		c.TimezoneWarn = fmt.Sprintf("unknown timezone %q, falling back to %s", tz, defaultTimezone)
		loc = time.UTC
		tz = defaultTimezone
	}
	c.Timezone = tz
	c.Location = loc
}

func parseOptionalID(name string) (int64, error) {
	v := os.Getenv(name)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}
