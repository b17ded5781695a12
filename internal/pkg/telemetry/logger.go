package telemetry

import (
	"log/slog"
	"os"
)

// InitLogger initialises the global slog logger with a JSON handler.
// Both binaries call this first so every component logs structured JSON
// through the slog package-level functions.
func InitLogger() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
