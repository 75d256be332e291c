// Package logx provides nil-safe slog helpers. A nil logger drops
// everything, so callers never have to guard their log sites.
package logx

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

func Log(msg string, logger *slog.Logger, lvl slog.Level, skip int, args ...any) {
	if logger == nil || !logger.Enabled(context.Background(), lvl) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])
	r := slog.NewRecord(time.Now(), lvl, msg, pcs[0])
	_ = logger.With(args...).Handler().Handle(context.Background(), r)
}

func Debug(msg string, logger *slog.Logger, args ...any) {
	Log(msg, logger, slog.LevelDebug, 3, args...)
}

func Info(msg string, logger *slog.Logger, args ...any) {
	Log(msg, logger, slog.LevelInfo, 3, args...)
}

func Warn(msg string, logger *slog.Logger, args ...any) {
	Log(msg, logger, slog.LevelWarn, 3, args...)
}

func Error(msg string, logger *slog.Logger, args ...any) {
	Log(msg, logger, slog.LevelError, 3, args...)
}

// IsErr logs err at lvl and reports whether it was non-nil. Joined errors
// are logged one record per cause.
func IsErr(err error, logger *slog.Logger, lvl slog.Level, args ...any) bool {
	if err == nil {
		return false
	}
	if logger != nil {
		if errs, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range errs.Unwrap() {
				Log(e.Error(), logger, lvl, 3, args...)
			}
		} else {
			Log(err.Error(), logger, lvl, 3, args...)
		}
	}
	return true
}
