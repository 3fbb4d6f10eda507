// internal/infra/telegram/client.go
package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client on top of gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendText posts text to a chat, group or channel.
func (tba *TelebotAdapter) SendText(chatID int64, text string, mode telebot.ParseMode) error {
	_, err := tba.bot.Send(&telebot.Chat{ID: chatID}, text, &telebot.SendOptions{
		ParseMode:             mode,
		DisableWebPagePreview: true,
	})
	return err
}
