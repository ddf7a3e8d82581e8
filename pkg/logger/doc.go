// Package logger provides slog factories with context-extracted
// attributes and optional Sentry forwarding.
package logger
