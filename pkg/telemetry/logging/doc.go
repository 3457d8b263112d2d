// Package logging builds the process-wide structured logger.
//
// # Overview
//
// The logging package is a thin factory over Go's standard log/slog:
//   - JSON or logfmt text output on any io.Writer
//   - Configurable minimum level (debug, info, warn, error)
//   - A live *slog.LevelVar so verbosity can change at runtime
//
// # Usage
//
//	logger, levelVar, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//
//	logger.Info("engine started", "backend", "sqlite")
//
//	// Later, e.g. from a configuration reload:
//	levelVar.Set(slog.LevelDebug)
//
// Components derive their own loggers with logger.With("component", name)
// so every record identifies its origin.
package logging
