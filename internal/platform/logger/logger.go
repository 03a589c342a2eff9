package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger at the given level. Services and
// handlers receive it by injection so tests can silence or capture output.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
