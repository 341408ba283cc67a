// Package messengertest provides a recording Messenger for tests.
package messengertest

import (
	"errors"
	"os"
	"sync"

	"github.com/wapuda/tg-grabber/internal/messenger"
)

type Op string

const (
	OpSend     Op = "send"
	OpEdit     Op = "edit"
	OpDocument Op = "document"
)

type Event struct {
	Op        Op
	ChatID    int64
	MessageID int
	Text      string // message text or document caption
	Path      string
	// Content of the document at upload time; the workspace is gone afterwards.
	Content []byte
}

// Recorder records every call. Set the hooks to inject failures.
type Recorder struct {
	// FailDocument makes SendDocument return this error.
	FailDocument error
	// OnDocument runs before a document is recorded; it may panic.
	OnDocument func(chatID int64, path string)

	mu     sync.Mutex
	next   int
	events []Event
}

var ErrInjected = errors.New("injected failure")

func New() *Recorder { return &Recorder{} }

func (r *Recorder) SendMessage(chatID int64, text string) (messenger.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.events = append(r.events, Event{Op: OpSend, ChatID: chatID, MessageID: r.next, Text: text})
	return messenger.Handle{ChatID: chatID, MessageID: r.next}, nil
}

func (r *Recorder) EditMessage(h messenger.Handle, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Op: OpEdit, ChatID: h.ChatID, MessageID: h.MessageID, Text: text})
	return nil
}

func (r *Recorder) SendDocument(chatID int64, path, caption string) error {
	if r.OnDocument != nil {
		r.OnDocument(chatID, path)
	}
	if r.FailDocument != nil {
		return r.FailDocument
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Op: OpDocument, ChatID: chatID, Text: caption, Path: path, Content: content})
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// For returns the events of one chat, in order.
func (r *Recorder) For(chatID int64) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.ChatID == chatID {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Documents(chatID int64) []Event {
	return r.filter(chatID, OpDocument)
}

func (r *Recorder) Sent(chatID int64) []Event {
	return r.filter(chatID, OpSend)
}

func (r *Recorder) filter(chatID int64, op Op) []Event {
	var out []Event
	for _, e := range r.For(chatID) {
		if e.Op == op {
			out = append(out, e)
		}
	}
	return out
}
