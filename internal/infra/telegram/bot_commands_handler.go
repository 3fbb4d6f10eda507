// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	"oftheday_display/internal/app"
	"oftheday_display/internal/domain/ofday"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Status is the read side of the display the bot reports on.
type Status interface {
	Current() (ofday.Frame, bool)
	Categories() []ofday.CategoryConfig
	Today(ctx context.Context, now time.Time) []app.TodayEntry
	DayOfYear(now time.Time) int
}

// BotCommands answers /now, /today, /categories and /help.
type BotCommands struct {
	ctx     context.Context
	status  Status
	adminID int64 // 0 leaves /today open to everyone
	now     func() time.Time
	logger  *logrus.Entry
}

func NewBotCommands(ctx context.Context, status Status, adminID int64, baseLogger *logrus.Entry) *BotCommands {
	if baseLogger == nil {
		baseLogger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &BotCommands{
		ctx:     ctx,
		status:  status,
		adminID: adminID,
		now:     time.Now,
		logger:  baseLogger.WithField("component", "bot_commands"),
	}
}

var commandList = []telebot.Command{
	{Text: "now", Description: "What the display shows right now"},
	{Text: "today", Description: "Today's entry for every category"},
	{Text: "categories", Description: "Categories in rotation order"},
	{Text: "help", Description: "List commands"},
}

// Register binds the handlers and publishes the command menu.
func (h *BotCommands) Register(b *telebot.Bot) {
	b.Handle("/start", h.onHelp)
	b.Handle("/help", h.onHelp)
	b.Handle("/now", h.onNow)
	b.Handle("/today", h.onToday)
	b.Handle("/categories", h.onCategories)
	if err := b.SetCommands(commandList); err != nil {
		h.logger.WithError(err).Warn("Could not publish bot command menu")
	}
}

func (h *BotCommands) handlerLogger(c telebot.Context, command string) *logrus.Entry {
	fields := logrus.Fields{"handler": command}
	if s := c.Sender(); s != nil {
		fields["sender_id"] = s.ID
	}
	return h.logger.WithFields(fields)
}

func (h *BotCommands) onNow(c telebot.Context) error {
	logCtx := h.handlerLogger(c, "/now")
	logCtx.Info("Command received")

	frame, ok := h.status.Current()
	if !ok {
		return c.Send("Nothing has been shown on the display yet.")
	}
	return c.Send(formatFrame(frame), telebot.ModeHTML)
}

func (h *BotCommands) onToday(c telebot.Context) error {
	logCtx := h.handlerLogger(c, "/today")
	logCtx.Info("Command received")

	if h.adminID != 0 && (c.Sender() == nil || c.Sender().ID != h.adminID) {
		logCtx.Warn("Unauthorized access attempt")
		return c.Send("You are not allowed to use this command.")
	}

	now := h.now()
	entries := h.status.Today(h.ctx, now)
	for _, e := range entries {
		if e.Err != nil {
			logCtx.WithError(e.Err).WithField("category", e.Category.Key).Warn("Category unavailable")
		}
	}
	return c.Send(formatToday(h.status.DayOfYear(now), entries), telebot.ModeHTML)
}

func (h *BotCommands) onCategories(c telebot.Context) error {
	h.handlerLogger(c, "/categories").Info("Command received")

	var b strings.Builder
	b.WriteString("Rotation order:\n")
	for i, cat := range h.status.Categories() {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(cat.DisplayName)
		if cat.DisplayName != cat.Key {
			b.WriteString(" (" + cat.Key + ")")
		}
	}
	return c.Send(b.String())
}

func (h *BotCommands) onHelp(c telebot.Context) error {
	h.handlerLogger(c, "/help").Info("Command received")

	var helpText strings.Builder
	helpText.WriteString("Available commands:\n")
	for _, cmd := range commandList {
		helpText.WriteString("\n/" + cmd.Text + " - " + cmd.Description)
	}
	if h.adminID != 0 {
		helpText.WriteString("\n\n/today is limited to the administrator.")
	}
	return c.Send(helpText.String())
}
