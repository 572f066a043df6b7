// Package logging wraps log/slog construction for the cdrip CLI.
//
// It opens the configured log file alongside stdout, supports console and
// JSON formats, and exposes typed attribute helpers so call sites stay
// terse and consistent.
package logging
