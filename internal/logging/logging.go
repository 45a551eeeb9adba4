// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the rotated log file written inside the log directory.
const FileName = "foldercap.log"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Init installs the logger. Console output goes to stderr at WARN, or DEBUG
// when verbose is set. If dir is non-empty, every record at INFO and above
// (DEBUG when verbose) is also written to a rotating file there.
func Init(dir string, verbose bool) (*slog.Logger, error) {
	return InitWriter(os.Stderr, dir, verbose)
}

// InitWriter is Init with an explicit console writer.
func InitWriter(console io.Writer, dir string, verbose bool) (*slog.Logger, error) {
	consoleLevel, fileLevel := slog.LevelWarn, slog.LevelInfo
	if verbose {
		consoleLevel, fileLevel = slog.LevelDebug, slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: consoleLevel}),
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(&lumberjack.Logger{
			Filename:   filepath.Join(dir, FileName),
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
		}, &slog.HandlerOptions{Level: fileLevel}))
	}

	logger = slog.New(&multiHandler{handlers: handlers})
	slog.SetDefault(logger)
	return logger, nil
}

// L returns the current logger.
func L() *slog.Logger {
	return logger
}

// Sub returns a child logger tagged with a component name.
func Sub(component string) *slog.Logger {
	return logger.With("comp", component)
}

type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, r.Level) {
			if err := hh.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		hs[i] = hh.WithAttrs(attrs)
	}
	return &multiHandler{handlers: hs}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		hs[i] = hh.WithGroup(name)
	}
	return &multiHandler{handlers: hs}
}
