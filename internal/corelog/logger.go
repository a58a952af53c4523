// Package corelog provides the structured logging sink the fsm engine
// streams its diagnostic records through. It is a thin wrapper over the
// standard log package so the engine never takes a hard dependency on a
// particular logging backend — callers needing JSON output, a different
// destination, or integration with their own logger only need to satisfy
// the Logger interface.
package corelog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// Logger is the sink the engine streams textual diagnostic records
// through. It mirrors the `<<` idiom of the original C++ logger: callers
// get leveled methods plus a way to attach structured fields.
type Logger interface {
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	// WithFields returns a logger that includes the given key/value pairs
	// on every subsequent entry.
	WithFields(fields map[string]interface{}) Logger

	// WithContext extracts request-scoped values (currently the trace id,
	// if any) from ctx and attaches them as fields.
	WithContext(ctx context.Context) Logger
}

// Config controls the default Logger's output.
type Config struct {
	// JSONOutput emits one JSON object per line instead of plain text.
	JSONOutput bool
	// Level is the minimum severity that reaches the sink: DEBUG, INFO,
	// WARN, or ERROR. Defaults to DEBUG (nothing filtered) when empty.
	Level string
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}

type defaultLogger struct {
	errorLogger *log.Logger
	warnLogger  *log.Logger
	infoLogger  *log.Logger
	debugLogger *log.Logger
	config      Config
	fields      map[string]interface{}
}

// New creates a Logger with DEBUG level, plain-text output.
func New() Logger {
	return NewWithConfig(Config{Level: "DEBUG"})
}

// NewWithConfig creates a Logger with the given configuration.
func NewWithConfig(cfg Config) Logger {
	if cfg.Level == "" {
		cfg.Level = "DEBUG"
	}
	return &defaultLogger{
		errorLogger: log.New(os.Stderr, "[ERROR] ", log.LstdFlags),
		warnLogger:  log.New(os.Stderr, "[WARN] ", log.LstdFlags),
		infoLogger:  log.New(os.Stdout, "[INFO] ", log.LstdFlags),
		debugLogger: log.New(os.Stdout, "[DEBUG] ", log.LstdFlags),
		config:      cfg,
		fields:      make(map[string]interface{}),
	}
}

type logEntry struct {
	Timestamp string                 `json:"timestamp,omitempty"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func (l *defaultLogger) log(level string, dst *log.Logger, message string) {
	if levelRank[level] < levelRank[l.config.Level] {
		return
	}
	if l.config.JSONOutput {
		entry := logEntry{Timestamp: time.Now().UTC().Format(time.RFC3339), Level: level, Message: message}
		if len(l.fields) > 0 {
			entry.Fields = l.fields
		}
		if data, err := json.Marshal(entry); err == nil {
			dst.Output(3, string(data))
			return
		}
	}
	if len(l.fields) > 0 {
		dst.Output(3, fmt.Sprintf("%s %v", message, l.fields))
		return
	}
	dst.Output(3, message)
}

func (l *defaultLogger) Error(args ...interface{}) { l.log("ERROR", l.errorLogger, fmt.Sprint(args...)) }
func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	l.log("ERROR", l.errorLogger, fmt.Sprintf(format, args...))
}
func (l *defaultLogger) Warn(args ...interface{}) { l.log("WARN", l.warnLogger, fmt.Sprint(args...)) }
func (l *defaultLogger) Warnf(format string, args ...interface{}) {
	l.log("WARN", l.warnLogger, fmt.Sprintf(format, args...))
}
func (l *defaultLogger) Info(args ...interface{}) { l.log("INFO", l.infoLogger, fmt.Sprint(args...)) }
func (l *defaultLogger) Infof(format string, args ...interface{}) {
	l.log("INFO", l.infoLogger, fmt.Sprintf(format, args...))
}
func (l *defaultLogger) Debug(args ...interface{}) {
	l.log("DEBUG", l.debugLogger, fmt.Sprint(args...))
}
func (l *defaultLogger) Debugf(format string, args ...interface{}) {
	l.log("DEBUG", l.debugLogger, fmt.Sprintf(format, args...))
}

func (l *defaultLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	clone := *l
	clone.fields = merged
	return &clone
}

type traceIDKey struct{}

// WithTraceID attaches a trace id to ctx for later extraction by
// WithContext, which then attaches it as the "trace_id" field.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

func (l *defaultLogger) WithContext(ctx context.Context) Logger {
	fields := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok && id != "" {
		fields["trace_id"] = id
	}
	clone := *l
	clone.fields = fields
	return &clone
}
