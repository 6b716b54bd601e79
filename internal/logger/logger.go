package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/alkime/monshin/internal/config"
	charmlog "github.com/charmbracelet/log"
)

// SetupLogger configures structured logging based on environment.
func SetupLogger(cfg *config.Config) *slog.Logger {
	// Determine log level
	logLevel := slog.LevelInfo
	if cfg.Env == "development" {
		logLevel = slog.LevelDebug
	}
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	// Create JSON handler for structured logging
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// SetupCLILogger routes slog through charmbracelet/log. The intake client owns
// the terminal, so callers normally pass a log file rather than stderr.
func SetupCLILogger(w io.Writer, debug bool) *slog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "intake",
	})

	handler.SetLevel(charmlog.InfoLevel)
	if debug {
		handler.SetLevel(charmlog.DebugLevel)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
