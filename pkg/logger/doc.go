// Package logger builds slog loggers for the auth bridge.
//
// Every component takes a *slog.Logger through an option and defaults to a
// discard logger, so logging stays opt-in per component. This package is
// the one place that decides format and level, normally from environment
// configuration:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.FromConfig(cfg, logger.WithService("auth-bridge"))
//
// JSON output is the default for log aggregation; text output is for
// development.
package logger
