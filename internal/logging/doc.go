// Package logging assembles structured slog loggers and formatting helpers used
// across the pipeline.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code automatically tags
// log lines with content IDs, stages, platforms, and correlation IDs. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
