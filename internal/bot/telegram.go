package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FromTelegram converts a Bot API message; ok is false for messages
// without text (stickers, media without caption).
func FromTelegram(m *tgbotapi.Message) (Inbound, bool) {
	if m == nil || m.Chat == nil {
		return Inbound{}, false
	}
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	if text == "" {
		return Inbound{}, false
	}
	in := Inbound{ChatID: m.Chat.ID, Text: text}
	if m.From != nil {
		in.UserID = m.From.ID
	}
	if m.IsCommand() {
		in.Command = m.Command()
		in.Args = m.CommandArguments()
	}
	return in, true
}
