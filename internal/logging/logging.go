// Package logging provides the run's leveled logger: a 7-severity scheme
// mirroring the source's Python LogLevel enum, written to a timestamped
// file the way the teacher's logger does.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level is a logging severity. Lower numeric value means more verbose,
// matching Python's logging module convention (and the source's LogLevel
// enum values exactly) rather than Go's usual high-is-severe ordering.
type Level int

const (
	Shell   Level = 5
	Debug   Level = 10
	Verbose Level = 15
	Info    Level = 20
	Quiet   Level = 25
	Warning Level = 30
	Error   Level = 40
)

// levelNames maps a Level to its config-file / display name.
var levelNames = map[Level]string{
	Shell:   "SHELL",
	Debug:   "DEBUG",
	Verbose: "VERBOSE",
	Info:    "INFO",
	Quiet:   "QUIET",
	Warning: "WARNING",
	Error:   "ERROR",
}

var namesToLevel = func() map[string]Level {
	m := make(map[string]Level, len(levelNames))
	for l, n := range levelNames {
		m[n] = l
	}
	return m
}()

func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel resolves a config-file level name (e.g. "INFO") to a Level.
func ParseLevel(name string) (Level, error) {
	if l, ok := namesToLevel[strings.ToUpper(name)]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("logging: unknown level name %q", name)
}

// DefaultLogDir returns the default log directory following the XDG Base
// Directory spec: $XDG_STATE_HOME/distrffmpeg/logs, defaulting to
// ~/.local/state/distrffmpeg/logs.
func DefaultLogDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "distrffmpeg", "logs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "distrffmpeg", "logs")
	}
	return filepath.Join(home, ".local", "state", "distrffmpeg", "logs")
}

// Logger wraps the standard logger with severity filtering and file
// output. A run's configured level gates which calls are actually written,
// same as the source's logger.setLevel(config.loglevel.value).
type Logger struct {
	level    Level
	logger   *log.Logger
	file     *os.File
	filePath string
}

// Setup creates a logger at the given level that writes to a timestamped
// log file under logDir. cmdArgs is logged verbatim at Info level (the
// source logs the parsed input command line at Shell level separately —
// callers should do the same via Logf(Shell, ...)).
func Setup(logDir string, level Level, cmdArgs []string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("distrffmpeg_run_%s.log", timestamp)
	filePath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	l := &Logger{
		level:    level,
		logger:   log.New(file, "", 0),
		file:     file,
		filePath: filePath,
	}

	l.Logf(Info, "Command: %s", strings.Join(cmdArgs, " "))
	l.Logf(Info, "distrffmpeg starting, level=%s", level)
	l.Logf(Info, "Log file: %s", filePath)

	return l, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Logf writes a formatted message at the given severity if the logger's
// configured level is at or below it (lower Level values are more
// verbose, so "at or below" means "at least as severe as configured").
func (l *Logger) Logf(at Level, format string, args ...any) {
	if l == nil || at < l.level {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.logger.Printf("%s [%-7s] "+format, append([]any{timestamp, at.String()}, args...)...)
}

// Writer returns an io.Writer that writes to the log file, for callers
// that want to pipe an external process's combined output straight into
// the run log (e.g. Shell-level command output).
func (l *Logger) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}

// Path returns the log file path, or "" if logging is disabled.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.filePath
}
