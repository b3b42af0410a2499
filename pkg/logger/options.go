package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "request_id"
	UserIDKey    ctxKey = "user_id"
	FiberCtxKey  ctxKey = "fiber_ctx"
)

// WithFormat sets the Fiber logger format.
func WithFormat(format string) LoggerOption {
	return func(l *Logger) { l.Format = format }
}

// WithTimeFormat sets the timestamp format.
func WithTimeFormat(timeformat string) LoggerOption {
	return func(l *Logger) { l.TimeFormat = timeformat }
}

// WithOutputDir sets the output directory of log files.
func WithOutputDir(dir string) LoggerOption {
	return func(l *Logger) { l.OutputDir = dir }
}

// WithMaxFileSize sets the maximum size of a single log file.
func WithMaxFileSize(size int) LoggerOption {
	return func(l *Logger) { l.MaxSizeMB = size }
}

// WithMaxDays sets the maximum age for the log files.
func WithMaxDays(days int) LoggerOption {
	return func(l *Logger) { l.MaxAgeDays = days }
}

// Event accumulates fields for a single log entry before it is queued.
type Event struct {
	logger *Logger
	ctx    context.Context
	level  LogLevel
	meta   map[string]string
}

// Debug starts a debug-level log event.
func (l *Logger) Debug(ctx context.Context) *Event {
	return l.event(ctx, LevelDebug)
}

// Info starts an info-level log event.
func (l *Logger) Info(ctx context.Context) *Event {
	return l.event(ctx, LevelInfo)
}

// Warn starts a warn-level log event.
func (l *Logger) Warn(ctx context.Context) *Event {
	return l.event(ctx, LevelWarn)
}

// Error starts an error-level log event.
func (l *Logger) Error(ctx context.Context) *Event {
	return l.event(ctx, LevelError)
}

func (l *Logger) event(ctx context.Context, level LogLevel) *Event {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Event{logger: l, ctx: ctx, level: level, meta: map[string]string{}}
}

// WithMeta merges a metadata map into the event.
func (e *Event) WithMeta(meta map[string]string) *Event {
	for k, v := range meta {
		e.meta[k] = v
	}
	return e
}

// WithFields adds alternating key/value pairs to the event metadata.
func (e *Event) WithFields(fields ...interface{}) *Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		e.meta[key] = fmt.Sprintf("%v", fields[i+1])
	}
	return e
}

// Logs finalizes the event and queues it for the worker.
func (e *Event) Logs(msg string) {
	entry := LogEntry{
		TimeStamp: time.Now().Format(e.logger.TimeFormat),
		Level:     string(e.level),
		Message:   msg,
	}
	if len(e.meta) > 0 {
		entry.Meta = e.meta
	}

	if reqID, ok := e.ctx.Value(RequestIDKey).(string); ok {
		entry.RequestID = reqID
	}
	if userID, ok := e.ctx.Value(UserIDKey).(string); ok {
		entry.UserID = userID
	}

	if c, ok := e.ctx.Value(FiberCtxKey).(*fiber.Ctx); ok {
		entry.Path = c.Path()
		entry.Method = c.Method()
		entry.Status = c.Response().StatusCode()
		entry.Latency = time.Since(c.Context().Time()).String()
	}

	select {
	case e.logger.Queue <- entry:
	default:
		// queue full, drop rather than block the request path
	}
}
