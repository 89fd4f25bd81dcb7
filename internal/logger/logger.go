// Package logger wraps the process-wide logrus logger used by the task API
// and the test kit.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/workshopstudio/taskapi/internal/constants"
)

// Output formats accepted in LOG_FORMAT
const (
	FormatJSON = "json"
	FormatText = "text"
)

var log = logrus.New()

// InitializeAndConfigure applies LOG_FORMAT and LOG_LEVEL to the shared
// logger. Unknown values fall back to JSON at info level.
func InitializeAndConfigure() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(formatter(os.Getenv(constants.EnvLogFormat)))
	log.SetLevel(level(os.Getenv(constants.EnvLogLevel)))
}

func formatter(name string) logrus.Formatter {
	if strings.EqualFold(name, FormatText) {
		return &logrus.TextFormatter{FullTimestamp: true}
	}
	return &logrus.JSONFormatter{}
}

func level(name string) logrus.Level {
	if name == "" {
		return logrus.InfoLevel
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(name))
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to 'info'", name)
		return logrus.InfoLevel
	}
	return lvl
}

// Get returns the shared logger for components that take a logrus.FieldLogger
func Get() *logrus.Logger {
	return log
}

// Trace logs a message at the Trace level
func Trace(args ...interface{}) {
	log.Trace(args...)
}

// Debug logs a message at the debug level
func Debug(args ...interface{}) {
	log.Debug(args...)
}

// Info logs a message at the Info level
func Info(args ...interface{}) {
	log.Info(args...)
}

// Warn logs a message at the Warn level
func Warn(args ...interface{}) {
	log.Warn(args...)
}

// Error logs a message at the Error level
func Error(args ...interface{}) {
	log.Error(args...)
}

// Tracef logs a formatted message at the trace level
func Tracef(format string, args ...interface{}) {
	log.Tracef(format, args...)
}

// Debugf logs a formatted message at the debug level
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof logs a formatted message at the info level
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warnf logs a formatted message at the warn level
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Errorf logs a formatted message at the error level
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// DebugWithFields logs a message at the debug level with additional fields
func DebugWithFields(msg string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Debug(msg)
}

// InfoWithFields logs a message at the info level with additional fields
func InfoWithFields(msg string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Info(msg)
}

// WarnWithFields logs a message at the warn level with additional fields
func WarnWithFields(msg string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Warn(msg)
}

// ErrorWithFields logs a message at the error level with additional fields
func ErrorWithFields(msg string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Error(msg)
}
