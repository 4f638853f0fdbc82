package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes the per-symbol trading journal to a dated log file.
type Logger struct {
	symbol  string
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
	debug   bool
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
	LogLevelTrade   LogLevel = "TRADE"
	LogLevelStatus  LogLevel = "STATUS"
	LogLevelDebug   LogLevel = "DEBUG"
)

// New creates a file logger for the given symbol.
func New(symbol string) (*Logger, error) {
	return NewWithDebug(symbol, false)
}

// NewWithDebug creates a file logger that optionally records debug entries.
func NewWithDebug(symbol string, debug bool) (*Logger, error) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", symbol, timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		symbol:  symbol,
		logFile: file,
		logger:  log.New(file, "", 0),
		debug:   debug,
	}
	l.writeSessionHeader()
	return l, nil
}

func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
🛡️ SIGNAL SENTRY SESSION STARTED
================================================================================
Symbol: %s
Started: %s
================================================================================
`, l.symbol, time.Now().Format("2006-01-02 15:04:05"))

	l.logger.Print(header)
}

// Log writes a formatted entry with the given level.
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	if level == LogLevelDebug && !l.debug {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s", timestamp, level, message)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// Trade logs a trade event
func (l *Logger) Trade(format string, args ...interface{}) {
	l.Log(LogLevelTrade, format, args...)
}

// Status logs a periodic status line
func (l *Logger) Status(format string, args ...interface{}) {
	l.Log(LogLevelStatus, format, args...)
}

// Debug logs a debug message when debug mode is on
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LogLevelDebug, format, args...)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logFile.Close()
}
