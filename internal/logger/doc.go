// Package logger configures structured logging for the asset loader.
//
// Components never reach for a global logger. The binaries call Setup once
// and hand the result to loader.New through loader.WithLogger:
//
//	log := logger.Setup(settings.LogLevel, settings.LogFormat, os.Stderr)
//	mgr, err := loader.New(settings, loader.WithLogger(log))
package logger
