package internal

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger builds the process logger: slog's JSON handler, or a
// charmbracelet/log handler for human-readable text.
func NewLogger(w io.Writer, cfg ApplicationConfig) *slog.Logger {
	if cfg.LogFormat == LogFormatText {
		h := log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Level:           log.Level(cfg.LogLevel),
		})
		return slog.New(h)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}
