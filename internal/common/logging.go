package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/pkg/storage"
	"github.com/urfave/cli/v2"
)

// LogLevel maps --verbose and --quiet onto a slog level.
func LogLevel(c *cli.Context) slog.Level {
	switch {
	case c.Bool("quiet"):
		return slog.LevelError
	case c.Bool("verbose"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a JSON logger writing to every w.
func NewLogger(level slog.Level, w ...io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.MultiWriter(w...), &slog.HandlerOptions{Level: level}))
}

// RunLogger logs to stderr and to logs/url_validation_{ts}.log under the
// output directory. The returned close func flushes the file.
func RunLogger(c *cli.Context, store *storage.Storage, ts time.Time) (*slog.Logger, func() error, error) {
	path := store.LogPath("url_validation", ts)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run log: %w", err)
	}

	logger := NewLogger(LogLevel(c), c.App.ErrWriter, f)
	return logger, f.Close, nil
}
