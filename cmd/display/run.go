package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oftheday_display/internal/app"
	"oftheday_display/internal/domain/ofday"
	"oftheday_display/internal/infra/config"
	"oftheday_display/internal/infra/httpapi"
	"oftheday_display/internal/infra/logger"
	"oftheday_display/internal/infra/metrics"
	"oftheday_display/internal/infra/scheduler"
	"oftheday_display/internal/infra/telegram"
	"oftheday_display/internal/infra/terminal"
	"oftheday_display/internal/infra/watcher"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the display until interrupted",
	RunE:  runDisplay,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-panel", false, "Do not draw the terminal panel")
	cmd.Flags().Bool("clear", false, "Clear the terminal before each redraw")
	cmd.Flags().Int("width", terminal.DefaultWidth, "Terminal panel width")
}

func runDisplay(cmd *cobra.Command, _ []string) error {
	noPanel, _ := cmd.Flags().GetBool("no-panel")
	clearScreen, _ := cmd.Flags().GetBool("clear")
	width, _ := cmd.Flags().GetInt("width")

	logOut := io.Writer(os.Stdout)
	if !noPanel {
		// The panel owns stdout.
		logOut = os.Stderr
	}
	cfg, err := loadConfig(logOut)
	if err != nil {
		return err
	}
	mainLogger := logger.Component("main")

	if !cfg.OfTheDay.Enabled {
		mainLogger.Warn("of_the_day is disabled in the configuration, nothing to display")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	c, err := buildComponents(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer c.Close()

	var sinks ofday.MultiSink
	if !noPanel {
		sinks = append(sinks, terminal.NewSink(os.Stdout, terminal.WithWidth(width), terminal.WithClearScreen(clearScreen)))
	}

	bot, err := newBot(cfg)
	if err != nil {
		return err
	}
	if bot != nil && cfg.TelegramChatID != 0 {
		announcer := telegram.NewAnnounceSink(telegram.NewTelebotAdapter(bot), cfg.TelegramChatID, 0, logger.Component("telegram"))
		sinks = append(sinks, announcer)
		go announcer.Run(ctx)
	}

	manager, err := app.NewOfTheDayManager(app.ManagerDeps{
		Registry: c.registry,
		Clock:    c.clock,
		Store:    c.store,
		Sink:     sinks,
		Location: cfg.Location,
		Start:    time.Now(),
		Logger:   logrus.NewEntry(logger.Log),
		Metrics:  m,
	})
	if err != nil {
		return err
	}
	if !c.clock.Aligned() {
		mainLogger.Warn("Display interval is not a multiple of the subtitle interval")
	}
	mainLogger.WithField("categories", len(manager.Categories())).Info("Of-the-day manager initialized")

	sched, err := scheduler.NewDisplayScheduler(manager, c.store, logrus.NewEntry(logger.Log), cfg.Location, cfg.RefreshInterval, cfg.RolloverCron)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}

	if len(c.files) > 0 {
		w, err := watcher.New(c.files, c.store, watcher.DefaultDebounce, logrus.NewEntry(logger.Log))
		if err != nil {
			mainLogger.WithError(err).Warn("Hot reload disabled")
		} else {
			go w.Run(ctx)
		}
	}

	var srv *httpapi.Server
	if cfg.HTTPAddr != "" {
		srv = httpapi.New(manager, m, logrus.NewEntry(logger.Log))
		go func() {
			if err := srv.Start(cfg.HTTPAddr); err != nil {
				mainLogger.WithError(err).Error("HTTP status server stopped")
			}
		}()
	}

	if bot != nil {
		telegram.NewBotCommands(ctx, manager, cfg.TelegramAdmin, logrus.NewEntry(logger.Log)).Register(bot)
		go bot.Start()
		mainLogger.Info("Telegram bot started")
	}

	mainLogger.Info("Application setup complete, display is running")
	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	if err := sched.Stop(); err != nil {
		mainLogger.WithError(err).Warn("Scheduler did not stop cleanly")
	}
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("HTTP server did not stop cleanly")
		}
		cancel()
	}
	if bot != nil {
		bot.Stop()
	}
	mainLogger.Info("Application shut down gracefully.")
	return nil
}

// newBot returns nil when no token is configured.
func newBot(cfg *config.AppConfig) (*telebot.Bot, error) {
	if cfg.TelegramToken == "" {
		return nil, nil
	}
	botLogger := logger.Component("telebot")
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram handler failed")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}
	return bot, nil
}
