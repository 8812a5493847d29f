// Package logging assembles structured slog loggers used across mailsift
// components.
//
// It owns the console/JSON handler setup, centralizes level plumbing, and
// exposes context-aware helpers so pipeline code automatically tags log lines
// with task IDs, senders, stages, and batch ordinals. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
