package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog sets up the default structured logger. Verbose enables debug
// output, which also switches on resty request/response dumping.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
