// Package logging assembles the structured slog loggers used across
// animatch.
//
// It owns the console and JSON handlers, the optional log-file tee, typed
// attribute helpers, and context helpers that tag log lines with the import
// run identifier. A no-op logger is provided for tests and for wiring code
// that must not fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same keys.
package logging
