package logger

import (
	"time"

	"github.com/harrison/srbaslam/internal/models"
)

// MultiLogger implements Logger by delegating to multiple loggers
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger fans out to every non-nil logger given
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	ml := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			ml.loggers = append(ml.loggers, l)
		}
	}
	return ml
}

// LogDebug forwards to all loggers
func (ml *MultiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *MultiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *MultiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *MultiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

// LogVariantSelected forwards to all loggers
func (ml *MultiLogger) LogVariantSelected(description string, p models.Params) {
	for _, l := range ml.loggers {
		l.LogVariantSelected(description, p)
	}
}

// LogRunComplete forwards to all loggers
func (ml *MultiLogger) LogRunComplete(description string, exitCode int, duration time.Duration) {
	for _, l := range ml.loggers {
		l.LogRunComplete(description, exitCode, duration)
	}
}
