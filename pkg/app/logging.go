package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/flemzord/chatlist/internal/config"
	"github.com/flemzord/chatlist/internal/redact"
)

// ParseLevel maps a log.level value to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("app: unknown log level %q", s)
	}
}

// NewLogger builds the process logger on w. The returned LevelVar can be
// changed later to apply a reloaded log.level. When r is non-nil every
// record passes through it.
func NewLogger(w io.Writer, cfg config.LogConfig, r *redact.Redactor) (*slog.Logger, *slog.LevelVar, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	level := new(slog.LevelVar)
	level.Set(lvl)

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch cfg.Format {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("app: unknown log format %q", cfg.Format)
	}
	if r != nil {
		h = redact.NewHandler(h, r)
	}
	return slog.New(h), level, nil
}
