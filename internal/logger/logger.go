// Package logger owns the process-wide slog logger. Records go to stderr,
// optionally teed to a file: stdout belongs to the verdict JSON.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var Log = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Init configures the global logger. level is one of debug, info, warn,
// error (unknown values fall back to info); logFile, when set, receives a
// copy of every record.
func Init(level string, logFile string) error {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		w = io.MultiWriter(os.Stderr, f)
	}

	Log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv}))
	slog.SetDefault(Log)
	return nil
}

// WithRun returns the global logger tagged with a judging run id, so every
// record of one run carries the same correlation key.
func WithRun(runID string) *slog.Logger {
	return Log.With("run_id", runID)
}
