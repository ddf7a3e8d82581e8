package logger

import (
	"log/slog"
	"os"
)

// New creates a JSON-formatted logger with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(NewDecorator(h, extractors...))
}

// NewComponent creates a logger tagged with a component name.
// The component attribute appears on every entry for easy filtering.
func NewComponent(component string, extractors ...ContextExtractor) *slog.Logger {
	return New(extractors...).With(slog.String("component", component))
}
