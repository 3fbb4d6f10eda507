package telegram

import (
	"context"
	"sync"

	"oftheday_display/internal/domain/ofday"
	tg "oftheday_display/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const DefaultAnnounceQueue = 16

// AnnounceSink posts each category's content to a chat once per day. Render never blocks the display
// loop: frames are queued and sent by Run; when the queue is full the frame is dropped and retried on
// a later tick.
type AnnounceSink struct {
	client tg.Client
	chatID int64
	queue  chan ofday.Frame
	logger *logrus.Entry

	mu        sync.Mutex
	announced map[string]int // category key -> day of year last queued
}

func NewAnnounceSink(client tg.Client, chatID int64, queueSize int, logger *logrus.Entry) *AnnounceSink {
	if queueSize <= 0 {
		queueSize = DefaultAnnounceQueue
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &AnnounceSink{
		client:    client,
		chatID:    chatID,
		queue:     make(chan ofday.Frame, queueSize),
		logger:    logger.WithFields(logrus.Fields{"component": "announce_sink", "chat_id": chatID}),
		announced: make(map[string]int),
	}
}

// Render queues the frame if its category has not been announced today.
func (s *AnnounceSink) Render(_ context.Context, frame ofday.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.announced[frame.CategoryKey] == frame.DayOfYear {
		return nil
	}
	select {
	case s.queue <- frame:
		s.announced[frame.CategoryKey] = frame.DayOfYear
	default:
		s.logger.WithField("category", frame.CategoryKey).Warn("Announcement queue full, dropping frame")
	}
	return nil
}

// Run sends queued announcements until ctx is done.
func (s *AnnounceSink) Run(ctx context.Context) {
	s.logger.Info("Announcement sender started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Announcement sender stopped")
			return
		case frame := <-s.queue:
			logCtx := s.logger.WithFields(logrus.Fields{
				"category":    frame.CategoryKey,
				"day_of_year": frame.DayOfYear,
			})
			if err := s.client.SendText(s.chatID, formatFrame(frame), telebot.ModeHTML); err != nil {
				logCtx.WithError(err).Error("Failed to send announcement")
				continue
			}
			logCtx.Info("Announcement sent")
		}
	}
}
