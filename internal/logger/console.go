// Package logger provides logging implementations for srba-slam runs.
//
// Loggers record the dispatch lifecycle: which variant was selected for
// which flags, how the run ended, and any failure reported to the user.
// Implementations are thread-safe and filter messages by level.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/srbaslam/internal/models"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is implemented by every logger the dispatcher writes to
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogVariantSelected(description string, p models.Params)
	LogRunComplete(description string, exitCode int, duration time.Duration)
}

// ConsoleLogger logs dispatch progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is enabled only when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: IsTerminal(writer),
	}
}

// IsTerminal checks if the writer is a TTY that supports colors.
// NO_COLOR (via color.NoColor) always disables colors.
func IsTerminal(w io.Writer) bool {
	if w == nil || color.NoColor {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if IsValidLevel(normalized) {
		return normalized
	}
	return "info"
}

// IsValidLevel reports whether level is one of trace, debug, info, warn, error
func IsValidLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// LevelForVerbosity maps the -v/--verbose value to a log level:
// 0 quiet (warn), 1 informative (info), 2 everything (debug).
func LevelForVerbosity(verbose int) string {
	switch {
	case verbose <= 0:
		return "warn"
	case verbose == 1:
		return "info"
	default:
		return "debug"
	}
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level passes the configured level.
func shouldLog(configured, messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(configured)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// LogVariantSelected logs the variant chosen for a configuration at INFO level.
// Format: "[HH:MM:SS] Selected variant <description>"
func (cl *ConsoleLogger) LogVariantSelected(description string, p models.Params) {
	if cl.colorOutput {
		description = color.New(color.Bold).Sprint(description)
	}
	cl.logWithLevel("INFO", fmt.Sprintf("Selected variant %s", description))
	if p.Options.Dataset != "" {
		cl.logWithLevel("DEBUG", fmt.Sprintf("Dataset: %s", p.Options.Dataset))
	}
}

// LogRunComplete logs how the selected variant finished.
// Success is logged at INFO, a non-zero exit code at WARN.
func (cl *ConsoleLogger) LogRunComplete(description string, exitCode int, duration time.Duration) {
	status := "completed"
	level := "INFO"
	if exitCode != 0 {
		status = fmt.Sprintf("exited with code %d", exitCode)
		level = "WARN"
	}
	if cl.colorOutput {
		if exitCode == 0 {
			status = color.New(color.FgGreen).Sprint(status)
		} else {
			status = color.New(color.FgRed).Sprint(status)
		}
	}
	cl.logWithLevel(level, fmt.Sprintf("%s %s (%s)", description, status, formatDuration(duration)))
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !shouldLog(cl.logLevel, strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "0.25s", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d < time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogVariantSelected(string, models.Params) {}
func (n *NoOpLogger) LogRunComplete(string, int, time.Duration) {}
