// file: internal/logging/logger.go
// version: 1.0.0
// guid: 5c0e8a3f-6b2d-4e71-9f14-a7d3b9c2e685

package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a config value ("debug", "info", "warn", "error") to a level
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

var (
	mu       sync.RWMutex
	minLevel = InfoLevel
)

// SetLevel sets the minimum level written by this package
func SetLevel(level LogLevel) {
	mu.Lock()
	minLevel = level
	mu.Unlock()
}

// Level returns the current minimum level
func Level() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return minLevel
}

// SetOutput redirects all log lines
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func enabled(level LogLevel) bool {
	return level >= Level()
}

// Logf writes a tagged line if level is enabled
func Logf(level LogLevel, format string, args ...any) {
	if !enabled(level) {
		return
	}
	log.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...any) { Logf(DebugLevel, format, args...) }
func Infof(format string, args ...any)  { Logf(InfoLevel, format, args...) }
func Warnf(format string, args ...any)  { Logf(WarnLevel, format, args...) }
func Errorf(format string, args ...any) { Logf(ErrorLevel, format, args...) }

// OperationLogger tracks the lifecycle of one gateway operation (a commit,
// an import, a lookup)
type OperationLogger struct {
	operation  string
	backend    string
	startTime  time.Time
	resourceID string
	details    map[string]any
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(operation, backend string) *OperationLogger {
	return &OperationLogger{
		operation: operation,
		backend:   backend,
		startTime: time.Now(),
		details:   make(map[string]any),
	}
}

// SetResourceID sets the record being operated on
func (ol *OperationLogger) SetResourceID(id string) {
	ol.resourceID = id
}

// AddDetail adds a contextual detail to the operation log
func (ol *OperationLogger) AddDetail(key string, value any) {
	ol.details[key] = value
}

// Elapsed returns the time since the operation started
func (ol *OperationLogger) Elapsed() time.Duration {
	return time.Since(ol.startTime)
}

func (ol *OperationLogger) prefix() string {
	msg := fmt.Sprintf("%s [%s]", ol.operation, ol.backend)
	if ol.resourceID != "" {
		msg = fmt.Sprintf("%s (resource: %s)", msg, ol.resourceID)
	}
	if len(ol.details) > 0 {
		msg = fmt.Sprintf("%s %v", msg, ol.details)
	}
	return msg
}

// LogStart logs the start of the operation
func (ol *OperationLogger) LogStart() {
	Debugf("[START] %s", ol.prefix())
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess() {
	Infof("[SUCCESS] %s in %v", ol.prefix(), ol.Elapsed())
}

// LogError logs an error that occurred during the operation
func (ol *OperationLogger) LogError(err error) {
	Errorf("[FAILED] %s in %v: %v", ol.prefix(), ol.Elapsed(), err)
}

// LogDatabaseOperation logs a database operation with its performance
func LogDatabaseOperation(operation string, table string, duration time.Duration, rowsAffected int, err error) {
	if err != nil {
		Logf(ErrorLevel, "[DB-ERROR] %s on %s failed in %v: %v", operation, table, duration, err)
		return
	}
	Logf(DebugLevel, "[DB] %s on %s completed in %v (%d rows)", operation, table, duration, rowsAffected)
}

// LogCacheHit logs a lookup served from cache
func LogCacheHit(cacheName string, key string) {
	Debugf("[CACHE-HIT] %s: %s", cacheName, key)
}

// LogCacheMiss logs a lookup that went to the store
func LogCacheMiss(cacheName string, key string) {
	Debugf("[CACHE-MISS] %s: %s", cacheName, key)
}

// LogValidationError logs a rejected record
func LogValidationError(operation string, field string, reason string) {
	Warnf("[VALIDATION-ERROR] %s field %q: %s", operation, field, reason)
}
