// Package logging assembles structured slog loggers for ndarimport.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can tag log lines with
// the run identifier, stage, and subject key. Logs go to stderr by default so
// the project identifier printed on stdout can be captured by scripts.
package logging
