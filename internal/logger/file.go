package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/srbaslam/internal/models"
)

// FileLogger logs dispatch events to a timestamped per-run file in a log
// directory and keeps a latest.log symlink pointing at the most recent run.
// Every run gets a random run id written in the header so a run log can be
// matched with the solver backend's own output.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	runID    string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to logDir with log level "info".
func NewFileLogger(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithLevel(logDir, "info")
}

// NewFileLoggerWithLevel creates a FileLogger with a custom log directory and log level.
// The directory is created if missing.
func NewFileLoggerWithLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runID := uuid.New().String()

	// run-YYYYMMDD-HHMMSS-<id prefix>.log; the prefix keeps runs started in
	// the same second apart
	ts := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s-%s.log", ts, runID[:8]))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		runID:    runID,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== srba-slam Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Run ID: %s\n", runID))
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// RunID returns the id written in the run log header
func (fl *FileLogger) RunID() string {
	return fl.runID
}

// Path returns the run log file path
func (fl *FileLogger) Path() string {
	return fl.runFile
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

// LogVariantSelected writes the selected variant and the full option set
// at INFO level, so a run log records exactly what the solver was given.
func (fl *FileLogger) LogVariantSelected(description string, p models.Params) {
	if !shouldLog(fl.logLevel, "info") {
		return
	}

	ts := timestamp()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] [INFO] Selected variant %s\n", ts, description))
	sb.WriteString(fmt.Sprintf("[%s] [INFO]   pose=%s mode=%s landmarks=%s obs=%q\n",
		ts, p.Pose, p.Mode, p.Landmarks, p.Observation))
	sb.WriteString(fmt.Sprintf("[%s] [INFO]   options=%+v\n", ts, p.Options))
	fl.writeRunLog(sb.String())
}

// LogRunComplete writes the exit code and duration of the selected variant.
func (fl *FileLogger) LogRunComplete(description string, exitCode int, duration time.Duration) {
	level := "INFO"
	status := "SUCCESS"
	if exitCode != 0 {
		level = "WARN"
		status = fmt.Sprintf("FAILED (exit code %d)", exitCode)
	}
	fl.logWithLevel(level, fmt.Sprintf("%s finished: %s in %.1fs", description, status, duration.Seconds()))
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (fl *FileLogger) logWithLevel(level string, message string) {
	if !shouldLog(fl.logLevel, strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
