package system

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents logging severity
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a LogLevel, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides file-based logging with daily rotation
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	logger *log.Logger
	logDir string
	prefix string
	date   string
	level  LogLevel
	now    func() time.Time
}

var globalLogger *Logger

// InitLogger initializes the global logger
func InitLogger(logDir string, level LogLevel) error {
	l, err := NewLogger(logDir, "factbook", level)
	if err != nil {
		return err
	}
	globalLogger = l
	return nil
}

// NewLogger creates a logger writing to <logDir>/<prefix>-YYYY-MM-DD.log and stdout.
func NewLogger(logDir, prefix string, level LogLevel) (*Logger, error) {
	if logDir == "" {
		logDir = "./logs"
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		logDir: logDir,
		prefix: prefix,
		level:  level,
		now:    time.Now,
	}

	if err := l.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return l, nil
}

// rotateIfNeeded opens a new file when the date changes
func (l *Logger) rotateIfNeeded() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.now().Format("2006-01-02")
	if l.date == today && l.file != nil {
		return nil
	}

	if l.file != nil {
		l.file.Close()
	}

	logPath := filepath.Join(l.logDir, fmt.Sprintf("%s-%s.log", l.prefix, today))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	// Also write to stdout for systemd journal
	multi := io.MultiWriter(os.Stdout, file)

	l.file = file
	l.logger = log.New(multi, "", 0)
	l.date = today

	return nil
}

// Log writes a log entry
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	if l != nil && level < l.level {
		return
	}
	if l == nil || l.rotateIfNeeded() != nil {
		log.Printf("[%s] %s", level.String(), fmt.Sprintf(format, args...))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := l.now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s", timestamp, level.String(), message)
}

// Close closes the current log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.logger = nil
	return err
}

func logf(level LogLevel, format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Log(level, format, args...)
		return
	}
	if level == LevelDebug {
		return
	}
	log.Printf("["+level.String()+"] "+format, args...)
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) { logf(LevelDebug, format, args...) }

// Info logs an info message
func Info(format string, args ...interface{}) { logf(LevelInfo, format, args...) }

// Warn logs a warning message
func Warn(format string, args ...interface{}) { logf(LevelWarn, format, args...) }

// Error logs an error message
func Error(format string, args ...interface{}) { logf(LevelError, format, args...) }

// Close closes the global logger
func Close() {
	if globalLogger != nil {
		globalLogger.Close()
	}
}
