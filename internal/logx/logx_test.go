package logx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/wapuda/tg-grabber/internal/logx"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LOG_SAMPLE_EVERY", "10")
	t.Setenv("LOG_FILE_COMPRESS", "no")

	c := logx.FromEnv("bot")
	require.Equal(t, "bot", c.Service)
	require.Equal(t, "debug", c.Level)
	require.Equal(t, "console", c.Format)
	require.Equal(t, 10, c.SampleEveryN)
	require.False(t, c.FileCompress)
	require.Equal(t, 50, c.FileMaxSizeMB)
}

func TestFromCtx(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)

	ctx := logx.WithJob(context.Background(), "01JOB", 42)
	l := logx.FromCtx(ctx)
	l.Info().Msg("hello")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	require.Equal(t, "01JOB", ev["job"])
	require.EqualValues(t, 42, ev["chat_id"])
	require.Equal(t, "hello", ev["message"])
}

func TestLineWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := logx.NewLineWriter(zerolog.New(&buf), map[string]string{"stream": "stderr"}, zerolog.InfoLevel)

	_, err := lw.Write([]byte("first\nsec"))
	require.NoError(t, err)
	_, err = lw.Write([]byte("ond\r\n\nthird"))
	require.NoError(t, err)
	lw.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var msgs []string
	for _, l := range lines {
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &ev))
		require.Equal(t, "stderr", ev["stream"])
		msgs = append(msgs, ev["message"].(string))
	}
	require.Equal(t, []string{"first", "second", "third"}, msgs)
}

func TestAsynqLogger(t *testing.T) {
	var buf bytes.Buffer
	a := logx.AsynqLogger{L: zerolog.New(&buf)}
	a.Warn("retry ", 3)

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	require.Equal(t, "warn", ev["level"])
	require.Equal(t, "retry 3", ev["message"])
}
