package logger

import (
	"log/slog"
	"os"
)

// New returns the service-wide structured logger. Handlers and services take
// it as a dependency rather than reaching for a package global.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
