package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jrj02/npc-dialogue/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the global slog logger based on environment. When a log
// file is configured, output goes to a size-rotated file instead of stdout,
// which keeps the terminal clean for the TUI client.
func Setup(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithConversationID adds a conversation ID to logger context.
func WithConversationID(logger *slog.Logger, id string) *slog.Logger {
	return logger.With("conversation_id", id)
}

// WithError adds an error to logger context.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
