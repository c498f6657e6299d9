// Package logger provides a simple, thread-safe logging facility.
//
// Each log entry includes a millisecond timestamp, the level, an optional
// source (a component name such as "coordinator" or "worker-3"), and the
// message. The default logger writes to stderr so that it never interleaves
// with result lines on stdout.
//
// # Basic Usage
//
//	logger.Info("coordinator", "Spawning %d workers", n)
//	logger.Debug(logger.WorkerSource(3), "Claimed %d", item)
//
// Creating a custom logger:
//
//	l := logger.New(os.Stdout, logger.LevelDebug)
//
// Libraries that accept a printf-style hook can log through Printf:
//
//	maxprocs.Set(maxprocs.Logger(logger.Default.Printf(logger.LevelDebug, "maxprocs")))
//
// # Log Levels
//
// Messages below the configured level are filtered before they are
// formatted; the level check takes no lock. ParseLevel accepts "debug",
// "info", "warn" and "error".
package logger
