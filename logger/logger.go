// Package logger is a leveled line logger on top of log/slog with the extra
// TRACE, NOTICE and CRITICAL levels, plus an optional process-wide instance
// writing to a file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Levels, ordered by severity. Debug, Info, Warning and Error match slog's.
const (
	LevelTrace    slog.Level = -8
	LevelDebug    slog.Level = slog.LevelDebug
	LevelInfo     slog.Level = slog.LevelInfo
	LevelNotice   slog.Level = 2
	LevelWarning  slog.Level = slog.LevelWarn
	LevelError    slog.Level = slog.LevelError
	LevelCritical slog.Level = 12
)

var levelNames = []struct {
	level slog.Level
	name  string
}{
	{LevelTrace, "TRACE"},
	{LevelDebug, "DEBUG"},
	{LevelInfo, "INFO"},
	{LevelNotice, "NOTICE"},
	{LevelWarning, "WARNING"},
	{LevelError, "ERROR"},
	{LevelCritical, "CRITICAL"},
}

// LevelName returns the upper-case name of level. Levels between the named
// ones print as the nearest lower name with an offset, like slog does.
func LevelName(level slog.Level) string {
	for i := len(levelNames) - 1; i >= 0; i-- {
		ln := levelNames[i]
		if level == ln.level {
			return ln.name
		}
		if level > ln.level {
			return fmt.Sprintf("%s%+d", ln.name, int(level-ln.level))
		}
	}
	return fmt.Sprintf("%s%+d", levelNames[0].name, int(level-levelNames[0].level))
}

// ParseLevel accepts a level name in any case; "warn" is an alias of WARNING.
func ParseLevel(s string) (slog.Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARN" {
		return LevelWarning, nil
	}
	for _, ln := range levelNames {
		if ln.name == name {
			return ln.level, nil
		}
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Logger adds the extra levels to a *slog.Logger.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing formatted lines to w from level up.
func New(w io.Writer, level slog.Leveler) *Logger {
	return &Logger{Logger: slog.New(NewHandler(w, &HandlerOptions{Level: level}))}
}

// Trace logs at LevelTrace.
func (l *Logger) Trace(msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

// Notice logs at LevelNotice.
func (l *Logger) Notice(msg string, args ...any) {
	l.Log(context.Background(), LevelNotice, msg, args...)
}

// Warning logs at LevelWarning.
func (l *Logger) Warning(msg string, args ...any) {
	l.Log(context.Background(), LevelWarning, msg, args...)
}

// Critical logs at LevelCritical.
func (l *Logger) Critical(msg string, args ...any) {
	l.Log(context.Background(), LevelCritical, msg, args...)
}

// IsEnabled reports whether records at level are written.
func (l *Logger) IsEnabled(level slog.Level) bool {
	return l.Enabled(context.Background(), level)
}

var (
	mu      sync.Mutex
	file    *os.File
	current *Logger
)

var discard = &Logger{Logger: slog.New(slog.DiscardHandler)}

// Initialize opens path for appending and makes it the process-wide log
// target from level up. An empty path logs to stderr. A previous target is
// closed first.
func Initialize(path string, level slog.Level) error {
	mu.Lock()
	defer mu.Unlock()

	if err := closeLocked(); err != nil {
		return err
	}

	var out io.Writer = os.Stderr
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file '%s': %w", path, err)
		}
		file = f
		out = f
	}
	current = New(out, level)
	return nil
}

// Default returns the process-wide logger, or one that drops everything when
// logging is not initialized.
func Default() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return discard
	}
	return current
}

// IsEnabled reports whether the process-wide logger writes level. active is
// false while logging is not initialized.
func IsEnabled(level slog.Level) (enabled, active bool) {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return false, false
	}
	return current.IsEnabled(level), true
}

// Disable stops process-wide logging and closes the log file.
func Disable() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	current = nil
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
