package logx

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

// LineWriter turns stream output into per-line zerolog events at a given level.
// It is an io.Writer so it can sit next to a capture buffer in io.MultiWriter.
type LineWriter struct {
	logger zerolog.Logger
	level  zerolog.Level

	mu  sync.Mutex
	buf []byte
}

func NewLineWriter(logger zerolog.Logger, fields map[string]string, level zerolog.Level) *LineWriter {
	w := logger.With()
	for k, v := range fields {
		w = w.Str(k, v)
	}
	return &LineWriter{logger: w.Logger(), level: level}
}

func (lw *LineWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.buf = append(lw.buf, p...)
	for {
		i := bytes.IndexByte(lw.buf, '\n')
		if i < 0 {
			break
		}
		lw.emit(string(bytes.TrimRight(lw.buf[:i], "\r")))
		lw.buf = lw.buf[i+1:]
	}
	return len(p), nil
}

// Flush emits a trailing line that had no newline.
func (lw *LineWriter) Flush() {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if len(lw.buf) > 0 {
		lw.emit(string(lw.buf))
		lw.buf = nil
	}
}

func (lw *LineWriter) emit(line string) {
	if line == "" {
		return
	}
	switch lw.level {
	case zerolog.DebugLevel:
		lw.logger.Debug().Msg(line)
	case zerolog.ErrorLevel:
		lw.logger.Error().Msg(line)
	default:
		lw.logger.Info().Msg(line)
	}
}
