package watch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/check"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/diff"
)

// ChangeType represents the type of filesystem change.
type ChangeType string

const (
	ChangeAdded    ChangeType = "+"
	ChangeModified ChangeType = "~"
	ChangeDeleted  ChangeType = "-"
)

var changeStyles = map[ChangeType]lipgloss.Style{
	ChangeAdded:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	ChangeModified: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	ChangeDeleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

// Logger handles watch mode output.
type Logger struct {
	mu      sync.Mutex
	writer  io.Writer
	isTTY   bool
	verbose bool
	noColor bool
	jsonOut bool

	stats Stats
}

// Stats counts what happened during a watch session.
type Stats struct {
	Checks    int
	Changed   int
	Errors    int
	StartTime time.Time
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
	JSON    bool
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg LoggerConfig) *Logger {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	isTTY := false
	if f, ok := writer.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	return &Logger{
		writer:  writer,
		isTTY:   isTTY,
		verbose: cfg.Verbose,
		noColor: cfg.NoColor,
		jsonOut: cfg.JSON,
		stats:   Stats{StartTime: time.Now()},
	}
}

// Ready logs that the tree is being watched.
func (l *Logger) Ready(dirs int, root string) {
	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event": "ready",
			"dirs":  dirs,
			"path":  root,
		})
		return
	}

	l.printf("foldercheck: watching %d directories in %s\n", dirs, root)
	l.println("foldercheck: ready")
	l.println()
}

// FileChanged logs a change event. Text output shows it only when verbose.
func (l *Logger) FileChanged(path string, change ChangeType) {
	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":  "file_changed",
			"path":   path,
			"change": string(change),
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}

	if l.verbose {
		l.printf("[%s] %s %s\n", l.timestamp(), l.colorize(string(change), change), path)
	}
}

// Checking logs that a check is starting for the given batch.
func (l *Logger) Checking(paths []string) {
	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event": "checking",
			"paths": paths,
			"time":  time.Now().Format(time.RFC3339),
		})
		return
	}

	switch len(paths) {
	case 0:
		l.printf("[%s] checking...\n", l.timestamp())
	case 1:
		l.printf("[%s] checking after change to %s...\n", l.timestamp(), paths[0])
	default:
		l.printf("[%s] checking after %d changes...\n", l.timestamp(), len(paths))
	}
}

// Checked logs a completed check and, when lines changed, the report.
func (l *Logger) Checked(o *check.Outcome) {
	l.mu.Lock()
	l.stats.Checks++
	if o.Status == check.Changed {
		l.stats.Changed++
	}
	l.mu.Unlock()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":   "checked",
			"outcome": o,
			"time":    time.Now().Format(time.RFC3339),
		})
		return
	}

	ok := l.colorize("✓", ChangeAdded)
	switch o.Status {
	case check.FirstRun:
		l.printf("[%s] %s first check done, %d entries in %s\n", l.timestamp(), ok, o.Entries, o.Snapshot)
	case check.NoChange:
		l.printf("[%s] %s no change (%s)\n", l.timestamp(), ok, o.Snapshot)
	default:
		mark := l.colorize("~", ChangeModified)
		l.printf("[%s] %s %d added, %d removed since %s\n", l.timestamp(), mark,
			len(o.Diff.Added), len(o.Diff.Removed), o.Previous)
		l.mu.Lock()
		_ = diff.Report(l.writer, o.Diff, diff.Style{Color: l.colorEnabled()})
		l.mu.Unlock()
	}
}

// Error logs an error.
func (l *Logger) Error(err error) {
	l.mu.Lock()
	l.stats.Errors++
	l.mu.Unlock()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event": "error",
			"error": err.Error(),
			"time":  time.Now().Format(time.RFC3339),
		})
		return
	}

	xmark := l.colorize("✗", ChangeDeleted)
	l.printf("[%s] %s error: %v\n", l.timestamp(), xmark, err)
}

// Shutdown logs the shutdown message with statistics.
func (l *Logger) Shutdown() {
	stats := l.Stats()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":    "shutdown",
			"checks":   stats.Checks,
			"changed":  stats.Changed,
			"errors":   stats.Errors,
			"duration": time.Since(stats.StartTime).String(),
		})
		return
	}

	l.println()
	l.printf("foldercheck: shutting down (%d checks, %d with changes, %d errors)\n",
		stats.Checks, stats.Changed, stats.Errors)
}

// Stats returns the current session statistics.
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Logger) timestamp() string {
	return time.Now().Format("15:04:05")
}

func (l *Logger) colorEnabled() bool {
	return !l.noColor && l.isTTY
}

func (l *Logger) colorize(s string, change ChangeType) string {
	if !l.colorEnabled() {
		return s
	}
	style, ok := changeStyles[change]
	if !ok {
		return s
	}
	return style.Render(s)
}

func (l *Logger) writeJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		l.println(`{"event":"internal_error","error":"json marshal failed"}`)
		return
	}
	l.println(string(data))
}

// printf writes to the output, ignoring errors; output is informational.
func (l *Logger) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.writer, format, args...)
}

func (l *Logger) println(args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintln(l.writer, args...)
}
