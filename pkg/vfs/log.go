package vfs

import (
	"log/slog"
	"os"
	"strings"
)

// newLogger builds the default Manager logger, gated by SIMFS_LOG_LEVEL
// in the same env-var-gated style other tracing tools use: "off"
// (default) discards everything, "info" and "debug" set the handler's
// level. The Manager emits debug events only, for node creation and
// open; it logs nothing at info.
func newLogger() *slog.Logger {
	level := parseLogLevel()
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func parseLogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SIMFS_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	default:
		// "off" and anything unrecognized: raise the handler's floor
		// above Error so nothing is ever emitted.
		return slog.LevelError + 1
	}
}
