// Package logger is the process-wide leveled logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-pkgz/lgr"
)

var (
	globalLogger lgr.L = lgr.NoOp
	logFile      *os.File
	mu           sync.Mutex
)

// Init initializes the global logger with the specified log file path.
func Init(logPath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	// Close previous log file if exists
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	setup(f, debug)
	return nil
}

// SetOutput routes log output to w (stderr for the CLI, a buffer in tests).
func SetOutput(w io.Writer, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	setup(w, debug)
}

func setup(w io.Writer, debug bool) {
	opts := []lgr.Option{lgr.Out(w), lgr.Err(io.Discard), lgr.Msec}
	if debug {
		opts = append(opts, lgr.Debug)
	}
	globalLogger = lgr.New(opts...)
}

// Close closes the log file and silences the logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = lgr.NoOp
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	logf("[INFO] "+format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	logf("[DEBUG] "+format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	logf("[ERROR] "+format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	logf("[WARN] "+format, v...)
}

func logf(format string, v ...interface{}) {
	mu.Lock()
	l := globalLogger
	mu.Unlock()
	l.Logf(format, v...)
}
