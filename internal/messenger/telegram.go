package messenger

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends through the Bot API. BotAPI.Send is a plain HTTP call, so
// concurrent jobs can share one instance.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

func NewTelegram(bot *tgbotapi.BotAPI) *Telegram {
	return &Telegram{bot: bot}
}

func (t *Telegram) SendMessage(chatID int64, text string) (Handle, error) {
	sent, err := t.bot.Send(tgbotapi.NewMessage(chatID, Clip(text, MaxTextLen)))
	if err != nil {
		return Handle{}, fmt.Errorf("send message: %w", err)
	}
	return Handle{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (t *Telegram) EditMessage(h Handle, text string) error {
	if _, err := t.bot.Send(tgbotapi.NewEditMessageText(h.ChatID, h.MessageID, Clip(text, MaxTextLen))); err != nil {
		return fmt.Errorf("edit message %d: %w", h.MessageID, err)
	}
	return nil
}

func (t *Telegram) SendDocument(chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := t.bot.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}
