// Package bot routes inbound chat messages to download jobs.
package bot

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/wapuda/tg-grabber/internal/dispatch"
	"github.com/wapuda/tg-grabber/internal/jobs"
	"github.com/wapuda/tg-grabber/internal/logx"
	"github.com/wapuda/tg-grabber/internal/messenger"
)

const (
	helpText = "Hi! Send me a link to an Instagram Reel, a YouTube video (Shorts too) or a Twitter (X) post.\n" +
		"I will try to download the media and send you the file.\n\n" +
		"Commands:\n" +
		"- just send a link\n" +
		"- /gif + link: try to convert to GIF (for Twitter gifs)\n" +
		"- /status: jobs running right now\n\n" +
		"Note: some media needs authorization (cookies)."
	promptNoURL    = "I expect a link to a video (Instagram / YouTube / Twitter)."
	promptGifNoURL = "Please send /gif together with a link."
	gifStarted     = "Started task: GIF conversion (may take a while)."
)

var reURL = regexp.MustCompile(`https?://\S+`)

// Inbound is a chat message stripped down to what routing needs.
type Inbound struct {
	ChatID  int64
	UserID  int64
	Text    string
	Command string // without the slash; empty for plain text
	Args    string
}

type StatusSource interface {
	Active(ctx context.Context, chatID int64) (chat, total int64, err error)
}

type Handler struct {
	msg         messenger.Messenger
	dispatcher  dispatch.Dispatcher
	status      StatusSource
	cookiesFile string
}

// NewHandler wires routing; status may be nil when no Redis is configured.
func NewHandler(msg messenger.Messenger, d dispatch.Dispatcher, status StatusSource, cookiesFile string) *Handler {
	return &Handler{msg: msg, dispatcher: d, status: status, cookiesFile: cookiesFile}
}

// FirstURL returns the first http(s) URL in text, or "".
func FirstURL(text string) string {
	return reURL.FindString(text)
}

func (h *Handler) OnMessage(ctx context.Context, m Inbound) {
	log := logx.FromCtx(ctx)
	log.Info().
		Int64("chat_id", m.ChatID).
		Int64("user_id", m.UserID).
		Str("command", m.Command).
		Msg("message received")

	switch m.Command {
	case "start", "help":
		h.reply(ctx, m.ChatID, helpText)
	case "gif":
		link := FirstURL(m.Args)
		if link == "" {
			h.reply(ctx, m.ChatID, promptGifNoURL)
			return
		}
		if h.submit(ctx, m.ChatID, link, true) {
			h.reply(ctx, m.ChatID, gifStarted)
		}
	case "status":
		h.replyStatus(ctx, m.ChatID)
	default:
		link := FirstURL(m.Text)
		if link == "" {
			h.reply(ctx, m.ChatID, promptNoURL)
			return
		}
		h.reply(ctx, m.ChatID, ServiceNote(link)+" Starting download in background...")
		h.submit(ctx, m.ChatID, link, false)
	}
}

func (h *Handler) submit(ctx context.Context, chatID int64, link string, gif bool) bool {
	req := jobs.DownloadRequest{
		ChatID:         chatID,
		SourceURL:      link,
		CredentialPath: h.cookiesFile,
		WantTranscode:  gif,
	}
	if err := h.dispatcher.Submit(ctx, req); err != nil {
		log := logx.FromCtx(ctx)
		log.Error().Err(err).Int64("chat_id", chatID).Msg("submit failed")
		h.reply(ctx, chatID, "Could not start the job: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) replyStatus(ctx context.Context, chatID int64) {
	if h.status == nil {
		h.reply(ctx, chatID, "Status is not available: no Redis configured.")
		return
	}
	chat, total, err := h.status.Active(ctx, chatID)
	if err != nil {
		log := logx.FromCtx(ctx)
		log.Error().Err(err).Msg("status lookup failed")
		h.reply(ctx, chatID, "Status is temporarily unavailable.")
		return
	}
	h.reply(ctx, chatID, fmt.Sprintf("Running jobs: %d in this chat, %d in total.", chat, total))
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if _, err := h.msg.SendMessage(chatID, text); err != nil {
		log := logx.FromCtx(ctx)
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("reply failed")
	}
}

// ServiceNote labels the link for the user; it does not affect the job.
func ServiceNote(rawURL string) string {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}
	switch {
	case onHost(host, "instagram.com", "instagr.am"):
		return "Instagram detected."
	case onHost(host, "youtube.com", "youtu.be"):
		return "YouTube detected."
	case onHost(host, "twitter.com", "x.com", "t.co"):
		return "Twitter/X detected."
	default:
		return "URL found; trying yt-dlp."
	}
}

func onHost(host string, domains ...string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
