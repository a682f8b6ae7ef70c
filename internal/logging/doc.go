// Package logging configures structured slog output for Capstan.
//
// It supplies console and JSON handlers, shared attribute helpers, and
// context-derived fields (release run ID, pipeline stage) so every component
// logs with consistent keys. Construct loggers through New or NewFromConfig so
// the format and level knobs in config.toml apply everywhere.
package logging
