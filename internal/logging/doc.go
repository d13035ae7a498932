// Package logging assembles structured slog loggers and formatting helpers used
// across vidup.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so session code can tag log
// lines with task identifiers and request correlation IDs. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// The terminal UI owns stdout, so loggers built from configuration write to
// the log file only.
package logging
