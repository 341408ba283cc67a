package main

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/wapuda/tg-grabber/internal/config"
	"github.com/wapuda/tg-grabber/internal/dispatch"
	"github.com/wapuda/tg-grabber/internal/executor"
	"github.com/wapuda/tg-grabber/internal/jobs"
	"github.com/wapuda/tg-grabber/internal/logx"
	"github.com/wapuda/tg-grabber/internal/messenger"
	"github.com/wapuda/tg-grabber/internal/proc"
	"github.com/wapuda/tg-grabber/internal/tracker"
	"github.com/wapuda/tg-grabber/internal/transcode"
	"github.com/wapuda/tg-grabber/internal/workspace"
)

func main() {
	c := config.Load()

	logger := logx.Setup(logx.FromEnv("worker"))
	log.Info().Msg("worker starting")

	if c.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required")
	}
	if c.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required")
	}
	if err := c.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad config")
	}

	ws := workspace.NewManager(c.TempRoot)
	if err := ws.EnsureRoot(); err != nil {
		log.Fatal().Err(err).Str("root", c.TempRoot).Msg("temp root")
	}

	api, err := tgbotapi.NewBotAPI(c.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram auth failed")
	}

	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	defer rdb.Close()

	runner := proc.NewRunner()
	ex := executor.New(executor.Config{
		YtDlpBin:        c.YtDlpBin,
		DownloadTimeout: c.DownloadTimeout,
		MaxNameBytes:    c.MaxNameBytes,
	}, messenger.NewTelegram(api), ws, runner, transcode.NewFFmpeg(runner, c.FFmpegBin, c.TranscodeTimeout))

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: c.RedisAddr}, asynq.Config{
		Concurrency: c.Concurrency,
		// a running job is bounded by its two tool timeouts; let it finish on SIGTERM
		ShutdownTimeout: c.DownloadTimeout + c.TranscodeTimeout,
		Logger:          logx.AsynqLogger{L: logger},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TaskDownload, dispatch.NewTaskHandler(ex, tracker.NewRedis(rdb)))

	log.Info().Int("concurrency", c.Concurrency).Msg("worker ready")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
