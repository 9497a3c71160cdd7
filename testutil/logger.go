package testutil

import (
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/lmittmann/tint"
)

// NewLogger returns a colorized slog logger writing to stderr, for test runs
// where the interleaving of stream signals matters. Millisecond timestamps
// keep concurrent emissions distinguishable.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
	}))
}

// DiscardLogger returns a logger that drops every record, for tests that
// exercise logging paths without wanting the output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
}
