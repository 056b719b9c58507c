package logger

import (
	"log/slog"
	"os"
)

// FatalWithLogger logs a startup failure through the given logger and
// exits. Bootstrap only; once the server is serving, errors flow back
// through the application's error channel instead.
func FatalWithLogger(logger *slog.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}
