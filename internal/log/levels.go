// Package log provides verbosity-gated structured logging for foldercheck.
// The report itself is written to stdout by the CLI; everything emitted here
// goes to stderr so snapshots can be piped without noise.
package log

import "log/slog"

// LevelTrace sits below slog.LevelDebug and is used for per-entry detail.
const LevelTrace = slog.Level(-8)

// Verbosity levels accepted by -v.
const (
	VerbosityError = 0 // errors only
	VerbosityWarn  = 1 // + warnings (default)
	VerbosityInfo  = 2 // + run summary: baseline, snapshot written, entry counts
	VerbosityDebug = 3 // + phase timings, worker count, skipped nodes
	VerbosityTrace = 4 // + one record per hashed entry
)

// VerbosityToLevel maps -v=N to a slog level.
func VerbosityToLevel(v int) slog.Level {
	switch {
	case v <= VerbosityError:
		return slog.LevelError
	case v == VerbosityWarn:
		return slog.LevelWarn
	case v == VerbosityInfo:
		return slog.LevelInfo
	case v == VerbosityDebug:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// LevelToVerbosity is the inverse of VerbosityToLevel.
func LevelToVerbosity(l slog.Level) int {
	switch {
	case l >= slog.LevelError:
		return VerbosityError
	case l >= slog.LevelWarn:
		return VerbosityWarn
	case l >= slog.LevelInfo:
		return VerbosityInfo
	case l >= slog.LevelDebug:
		return VerbosityDebug
	default:
		return VerbosityTrace
	}
}

// LevelName returns the display name for l, including TRACE.
func LevelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}
