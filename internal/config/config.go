package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DispatchInline = "inline"
	DispatchQueue  = "queue"
)

type Config struct {
	BotToken         string
	TempRoot         string
	YtDlpBin         string
	FFmpegBin        string
	DownloadTimeout  time.Duration
	TranscodeTimeout time.Duration
	CookiesFile      string
	DispatchMode     string
	RedisAddr        string
	Concurrency      int
	HealthAddr       string
	MaxNameBytes     int
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// mustDuration accepts Go durations ("90s") or plain seconds ("600").
func mustDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		BotToken:         os.Getenv("BOT_TOKEN"),
		TempRoot:         getenv("TMP_ROOT", "/tmp/tg_downloader"),
		YtDlpBin:         getenv("YTDLP_BIN", "yt-dlp"),
		FFmpegBin:        getenv("FFMPEG_BIN", "ffmpeg"),
		DownloadTimeout:  mustDuration("DOWNLOAD_TIMEOUT", 600*time.Second),
		TranscodeTimeout: mustDuration("TRANSCODE_TIMEOUT", 300*time.Second),
		CookiesFile:      strings.TrimSpace(os.Getenv("COOKIES_FILE")),
		DispatchMode:     strings.ToLower(getenv("DISPATCH_MODE", DispatchInline)),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		Concurrency:      mustInt("WORKER_CONCURRENCY", 4),
		HealthAddr:       getenv("HEALTH_ADDR", ":8080"),
		MaxNameBytes:     mustInt("MAX_NAME_BYTES", 120),
	}
}

// Validate checks settings every service needs; the bot token is checked by callers that talk to Telegram.
func (c Config) Validate() error {
	switch c.DispatchMode {
	case DispatchInline:
	case DispatchQueue:
		if c.RedisAddr == "" {
			return fmt.Errorf("DISPATCH_MODE=%s requires REDIS_ADDR", c.DispatchMode)
		}
	default:
		return fmt.Errorf("unknown DISPATCH_MODE %q", c.DispatchMode)
	}
	if c.TempRoot == "" {
		return fmt.Errorf("TMP_ROOT must not be empty")
	}
	if c.MaxNameBytes < 16 {
		return fmt.Errorf("MAX_NAME_BYTES must be at least 16, got %d", c.MaxNameBytes)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.Concurrency)
	}
	return nil
}
