package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/wapuda/tg-grabber/internal/bot"
	"github.com/wapuda/tg-grabber/internal/config"
	"github.com/wapuda/tg-grabber/internal/dispatch"
	"github.com/wapuda/tg-grabber/internal/executor"
	"github.com/wapuda/tg-grabber/internal/logx"
	"github.com/wapuda/tg-grabber/internal/messenger"
	"github.com/wapuda/tg-grabber/internal/proc"
	"github.com/wapuda/tg-grabber/internal/tracker"
	"github.com/wapuda/tg-grabber/internal/transcode"
	"github.com/wapuda/tg-grabber/internal/workspace"
)

func main() {
	c := config.Load()

	logx.Setup(logx.FromEnv("bot"))
	log.Info().Msg("bot starting")

	if c.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required")
	}
	if err := c.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad config")
	}

	ws := workspace.NewManager(c.TempRoot)
	if err := ws.EnsureRoot(); err != nil {
		log.Fatal().Err(err).Str("root", c.TempRoot).Msg("temp root")
	}

	health := startHealth(c.HealthAddr)

	api, err := tgbotapi.NewBotAPI(c.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram auth failed")
	}
	api.Debug = false
	log.Info().Str("username", api.Self.UserName).Msg("bot authorized")

	msg := messenger.NewTelegram(api)

	// Redis is optional in inline mode; without it /status is disabled.
	var (
		tr     dispatch.Tracker
		status bot.StatusSource
	)
	if c.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		defer rdb.Close()
		rt := tracker.NewRedis(rdb)
		tr, status = rt, rt
	}

	var d dispatch.Dispatcher
	switch c.DispatchMode {
	case config.DispatchQueue:
		client := asynq.NewClient(asynq.RedisClientOpt{Addr: c.RedisAddr})
		defer client.Close()
		d = dispatch.NewQueue(client)
	default:
		runner := proc.NewRunner()
		ex := executor.New(executor.Config{
			YtDlpBin:        c.YtDlpBin,
			DownloadTimeout: c.DownloadTimeout,
			MaxNameBytes:    c.MaxNameBytes,
		}, msg, ws, runner, transcode.NewFFmpeg(runner, c.FFmpegBin, c.TranscodeTimeout))
		d = dispatch.NewInline(ex, tr)
	}
	log.Info().Str("mode", c.DispatchMode).Msg("dispatcher ready")

	h := bot.NewHandler(msg, d, status, c.CookiesFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutdown: no new updates")
		api.StopReceivingUpdates()
	}()

	for upd := range updates {
		if upd.Message == nil {
			continue
		}
		in, ok := bot.FromTelegram(upd.Message)
		if !ok {
			continue
		}
		h.OnMessage(ctx, in)
	}

	log.Info().Msg("shutdown: waiting for running jobs")
	d.Wait()

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = health.Shutdown(sctx)
	log.Info().Msg("bot stopped")
}

func startHealth(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", addr).Msg("health endpoint")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server")
		}
	}()
	return srv
}
