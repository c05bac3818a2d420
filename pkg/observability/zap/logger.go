// Package zap is the zap-backed StructuredLogger used by the Lambda binary.
package zap

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	ubzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theory-cloud/cfkeypair"
	"github.com/theory-cloud/cfkeypair/pkg/observability"
	"github.com/theory-cloud/cfkeypair/pkg/sanitization"
)

const (
	defaultNotifyAttempts = 3
	defaultNotifyBackoff  = 200 * time.Millisecond
	defaultNotifyBuffer   = 64
)

type Option func(*settings)

type settings struct {
	base     *ubzap.Logger
	sanitize observability.SanitizerFunc
	notifier observability.ErrorNotifier
	attempts int
	backoff  time.Duration
	buffer   int
}

// WithBase replaces the stdout core built from LoggerConfig.
func WithBase(zl *ubzap.Logger) Option {
	return func(s *settings) { s.base = zl }
}

// WithSanitizer replaces sanitization.SanitizeFieldValue. nil keeps the default.
func WithSanitizer(fn observability.SanitizerFunc) Option {
	return func(s *settings) {
		if fn != nil {
			s.sanitize = fn
		}
	}
}

// WithNotifier forwards Error entries to n. nil disables notifications.
func WithNotifier(n observability.ErrorNotifier) Option {
	return func(s *settings) { s.notifier = n }
}

// WithNotifyPolicy tunes delivery: attempts per entry, linear backoff between attempts and the
// number of entries that may wait for delivery. Non-positive values keep the defaults.
func WithNotifyPolicy(attempts int, backoff time.Duration, buffer int) Option {
	return func(s *settings) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if backoff > 0 {
			s.backoff = backoff
		}
		if buffer > 0 {
			s.buffer = buffer
		}
	}
}

// Logger writes sanitized entries through zap. Invocation identifiers and scoped fields are
// resolved at write time, so a later scope overrides an earlier one instead of repeating the key.
type Logger struct {
	base     *ubzap.Logger
	sanitize observability.SanitizerFunc
	queue    *notifyQueue

	fields map[string]any
	inv    observability.Invocation
}

var _ observability.StructuredLogger = (*Logger)(nil)

func New(cfg observability.LoggerConfig, opts ...Option) (*Logger, error) {
	s := settings{
		sanitize: sanitization.SanitizeFieldValue,
		attempts: defaultNotifyAttempts,
		backoff:  defaultNotifyBackoff,
		buffer:   defaultNotifyBuffer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	base := s.base
	if base == nil {
		var err error
		if base, err = newStdoutLogger(cfg); err != nil {
			return nil, err
		}
	}

	l := &Logger{base: base, sanitize: s.sanitize}
	if s.notifier != nil {
		l.queue = newNotifyQueue(s.notifier, base, s.attempts, s.backoff, s.buffer)
	}
	return l, nil
}

func newStdoutLogger(cfg observability.LoggerConfig) (*ubzap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	ec := ubzap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.MessageKey = "message"
	ec.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	ec.StacktraceKey = zapcore.OmitKey
	if !cfg.Caller {
		ec.CallerKey = zapcore.OmitKey
	}

	var enc zapcore.Encoder
	switch resolveFormat(cfg.Format) {
	case "json":
		enc = zapcore.NewJSONEncoder(ec)
	case "console":
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		return nil, fmt.Errorf("observability/zap: unsupported log format %q", cfg.Format)
	}

	zl := ubzap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level))
	if cfg.Caller {
		// Skip write and the level method.
		zl = zl.WithOptions(ubzap.AddCaller(), ubzap.AddCallerSkip(2))
	}
	return zl, nil
}

func resolveFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" {
		return format
	}
	if cfkeypair.IsLambda() {
		return "json"
	}
	return "console"
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("observability/zap: unsupported log level %q", level)
	}
}

func (l *Logger) Debug(message string, fields ...map[string]any) {
	l.write(zapcore.DebugLevel, message, fields)
}

func (l *Logger) Info(message string, fields ...map[string]any) {
	l.write(zapcore.InfoLevel, message, fields)
}

func (l *Logger) Warn(message string, fields ...map[string]any) {
	l.write(zapcore.WarnLevel, message, fields)
}

// Error also queues the entry for the notifier, whether or not the level is enabled.
func (l *Logger) Error(message string, fields ...map[string]any) {
	l.write(zapcore.ErrorLevel, message, fields)
}

func (l *Logger) WithField(key string, value any) observability.StructuredLogger {
	return l.WithFields(map[string]any{key: value})
}

func (l *Logger) WithFields(fields map[string]any) observability.StructuredLogger {
	next := *l
	next.fields = observability.MergeFields(l.fields, fields)
	return &next
}

func (l *Logger) WithInvocation(inv observability.Invocation) observability.StructuredLogger {
	next := *l
	next.inv = observability.Invocation{
		RequestID:         sanitization.SanitizeLogString(inv.RequestID),
		InvocationID:      sanitization.SanitizeLogString(inv.InvocationID),
		RequestType:       sanitization.SanitizeLogString(inv.RequestType),
		LogicalResourceID: sanitization.SanitizeLogString(inv.LogicalResourceID),
		StackID:           sanitization.SanitizeLogString(inv.StackID),
	}
	return &next
}

// Flush syncs the zap core and waits for queued notifications until ctx is done.
func (l *Logger) Flush(ctx context.Context) error {
	if l == nil || l.base == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := l.base.Sync()
	if l.queue != nil {
		err = errors.Join(err, l.queue.wait(ctx))
	}
	return err
}

func (l *Logger) write(level zapcore.Level, message string, sets []map[string]any) {
	if l == nil || l.base == nil {
		return
	}
	message = sanitization.SanitizeLogString(message)
	fields := l.sanitized(sets)

	if ce := l.base.Check(level, message); ce != nil {
		ce.Write(l.zapFields(fields)...)
	}
	if level == zapcore.ErrorLevel && l.queue != nil {
		l.queue.push(observability.LogEntry{
			Timestamp:  time.Now().UTC(),
			Level:      level.String(),
			Message:    message,
			Invocation: l.inv,
			Fields:     fields,
		})
	}
}

func (l *Logger) sanitized(sets []map[string]any) map[string]any {
	merged := observability.MergeFields(append([]map[string]any{l.fields}, sets...)...)
	for k, v := range merged {
		merged[k] = l.sanitize(k, v)
	}
	return merged
}

// zapFields renders invocation identifiers first, then fields in key order.
func (l *Logger) zapFields(fields map[string]any) []ubzap.Field {
	ids := l.inv.Fields()
	out := make([]ubzap.Field, 0, len(ids)+len(fields))
	for _, k := range slices.Sorted(maps.Keys(ids)) {
		out = append(out, ubzap.String(k, ids[k]))
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		if _, taken := ids[k]; taken {
			continue
		}
		out = append(out, ubzap.Any(k, fields[k]))
	}
	return out
}
