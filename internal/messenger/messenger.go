// Package messenger is the outbound side of the chat transport.
package messenger

import "unicode/utf8"

// MaxTextLen is Telegram's limit for one message, in characters.
const MaxTextLen = 4096

// Handle identifies a sent message so the job that sent it can edit it.
type Handle struct {
	ChatID    int64
	MessageID int
}

func (h Handle) Valid() bool { return h.MessageID != 0 }

// Messenger must be safe for use by many jobs at once.
type Messenger interface {
	SendMessage(chatID int64, text string) (Handle, error)
	EditMessage(h Handle, text string) error
	SendDocument(chatID int64, path, caption string) error
}

// Clip cuts text to at most n characters.
func Clip(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
