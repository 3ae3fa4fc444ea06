package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ApplicationLogger defines the interface for structured application logging.
type ApplicationLogger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)
	ErrorWithError(ctx context.Context, err error, message string, fields Fields)
	LogPerformance(ctx context.Context, operation string, duration time.Duration, fields Fields)
	WithComponent(component string) ApplicationLogger
}

// Fields represents structured logging fields.
type Fields map[string]interface{}

// Config represents logger configuration.
type Config struct {
	Level  string
	Format string // json, text
	Output string // stdout, stderr, buffer (for testing)
	// Writer overrides Output when set.
	Writer io.Writer
}

// LogEntry represents the structure of JSON log entries.
type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id"`
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation,omitempty"`
	Duration      string                 `json:"duration,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

var levelOrder = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

var charmLevels = map[string]charmlog.Level{
	"DEBUG": charmlog.DebugLevel,
	"INFO":  charmlog.InfoLevel,
	"WARN":  charmlog.WarnLevel,
	"ERROR": charmlog.ErrorLevel,
}

// sink is shared by a logger and every component logger derived from it.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	buffer *bytes.Buffer
	text   *charmlog.Logger
}

type applicationLoggerImpl struct {
	config    Config
	level     int
	component string
	sink      *sink
}

// NewApplicationLogger creates a new application logger.
func NewApplicationLogger(config Config) (ApplicationLogger, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config.Level = strings.ToUpper(config.Level)

	s := &sink{}
	switch {
	case config.Writer != nil:
		s.out = config.Writer
	case config.Output == "buffer":
		s.buffer = &bytes.Buffer{}
		s.out = s.buffer
	case config.Output == "stdout":
		s.out = os.Stdout
	default:
		s.out = os.Stderr
	}

	if config.Format == "text" {
		s.text = charmlog.NewWithOptions(s.out, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Level:           charmLevels[config.Level],
		})
	}

	return &applicationLoggerImpl{
		config: config,
		level:  levelOrder[config.Level],
		sink:   s,
	}, nil
}

// validateConfig validates logger configuration.
func validateConfig(config Config) error {
	if _, ok := levelOrder[strings.ToUpper(config.Level)]; !ok {
		return fmt.Errorf("invalid log level: %s", config.Level)
	}

	switch config.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	switch config.Output {
	case "stdout", "stderr", "buffer", "":
	default:
		return fmt.Errorf("invalid log output: %s", config.Output)
	}

	return nil
}

func (l *applicationLoggerImpl) shouldLog(level string) bool {
	return levelOrder[level] >= l.level
}

// Debug logs debug messages.
func (l *applicationLoggerImpl) Debug(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("DEBUG") {
		l.logEntry(ctx, "DEBUG", message, "", fields)
	}
}

// Info logs info messages.
func (l *applicationLoggerImpl) Info(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("INFO") {
		l.logEntry(ctx, "INFO", message, "", fields)
	}
}

// Warn logs warning messages.
func (l *applicationLoggerImpl) Warn(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("WARN") {
		l.logEntry(ctx, "WARN", message, "", fields)
	}
}

// Error logs error messages.
func (l *applicationLoggerImpl) Error(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("ERROR") {
		l.logEntry(ctx, "ERROR", message, "", fields)
	}
}

// ErrorWithError logs error messages with an error object.
func (l *applicationLoggerImpl) ErrorWithError(ctx context.Context, err error, message string, fields Fields) {
	if l.shouldLog("ERROR") {
		errStr := ""
		if err != nil {
			errStr = err.Error()
		}
		l.logEntry(ctx, "ERROR", message, errStr, fields)
	}
}

// LogPerformance logs the duration of an operation.
func (l *applicationLoggerImpl) LogPerformance(
	ctx context.Context,
	operation string,
	duration time.Duration,
	fields Fields,
) {
	if !l.shouldLog("INFO") {
		return
	}
	merged := make(Fields, len(fields)+2)
	for k, v := range fields {
		merged[k] = v
	}
	merged["operation"] = operation
	merged["duration"] = duration.String()
	l.logEntry(ctx, "INFO", "Performance metrics for "+operation, "", merged)
}

// WithComponent creates a new logger instance with a specific component.
func (l *applicationLoggerImpl) WithComponent(component string) ApplicationLogger {
	return &applicationLoggerImpl{
		config:    l.config,
		level:     l.level,
		component: component,
		sink:      l.sink,
	}
}

func (l *applicationLoggerImpl) logEntry(ctx context.Context, level, message, errorStr string, fields Fields) {
	component := l.component
	if component == "" {
		component = "default"
	}

	entry := LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Level:         level,
		Message:       message,
		CorrelationID: getOrGenerateCorrelationID(ctx),
		Component:     component,
		Error:         errorStr,
	}
	if len(fields) > 0 {
		entry.Metadata = make(map[string]interface{}, len(fields))
	}
	for key, value := range fields {
		switch key {
		case "operation":
			if operation, ok := value.(string); ok {
				entry.Operation = operation
			}
		case "duration":
			if duration, ok := value.(string); ok {
				entry.Duration = duration
			}
		}
		entry.Metadata[key] = value
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.text != nil {
		l.writeText(&entry, fields)
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = l.sink.out.Write(data)
}

// writeText renders an entry through the console logger with sorted key/value pairs.
func (l *applicationLoggerImpl) writeText(entry *LogEntry, fields Fields) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := make([]interface{}, 0, 2*len(keys)+4)
	if entry.Component != "default" {
		keyvals = append(keyvals, "component", entry.Component)
	}
	for _, k := range keys {
		keyvals = append(keyvals, k, fields[k])
	}
	if entry.Error != "" {
		keyvals = append(keyvals, "error", entry.Error)
	}

	switch entry.Level {
	case "DEBUG":
		l.sink.text.Debug(entry.Message, keyvals...)
	case "INFO":
		l.sink.text.Info(entry.Message, keyvals...)
	case "WARN":
		l.sink.text.Warn(entry.Message, keyvals...)
	default:
		l.sink.text.Error(entry.Message, keyvals...)
	}
}

// Context keys for correlation ID management.
type contextKey string

const CorrelationIDKey contextKey = "correlation_id"

// WithCorrelationID stores a correlation id in ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// NewCorrelationID returns a fresh correlation id.
func NewCorrelationID() string {
	return uuid.New().String()
}

// CorrelationIDFromContext returns the correlation id stored in ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

func getOrGenerateCorrelationID(ctx context.Context) string {
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		return correlationID
	}
	return NewCorrelationID()
}

// BufferedOutput returns everything written by a logger created with Output "buffer".
func BufferedOutput(logger ApplicationLogger) string {
	impl, ok := logger.(*applicationLoggerImpl)
	if !ok || impl.sink.buffer == nil {
		return ""
	}
	impl.sink.mu.Lock()
	defer impl.sink.mu.Unlock()
	return impl.sink.buffer.String()
}
