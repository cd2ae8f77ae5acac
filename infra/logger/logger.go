package logger

import corelogger "github.com/kilianp07/courtsched/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component writing to stderr. The format
// follows APP_ENV and the threshold follows LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
