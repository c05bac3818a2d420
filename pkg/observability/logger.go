// Package observability defines the logging surface of the key-pair handler.
package observability

import (
	"context"
	"os"
	"strings"
	"time"
)

// SanitizerFunc rewrites a field value before it is written. It must never return key material.
type SanitizerFunc func(key string, value any) any

// ErrorNotifier receives Error entries out of band.
type ErrorNotifier interface {
	Notify(ctx context.Context, entry LogEntry) error
}

// Invocation identifies the custom resource event a log line belongs to.
type Invocation struct {
	// RequestID is the Lambda request ID, or the CloudFormation request ID outside Lambda.
	RequestID         string `json:"request_id,omitempty"`
	InvocationID      string `json:"invocation_id,omitempty"`
	RequestType       string `json:"request_type,omitempty"`
	LogicalResourceID string `json:"logical_resource_id,omitempty"`
	StackID           string `json:"stack_id,omitempty"`
}

// Fields returns the non-empty identifiers keyed as they appear in log output.
func (i Invocation) Fields() map[string]string {
	out := make(map[string]string, 5)
	for key, value := range map[string]string{
		"request_id":          i.RequestID,
		"invocation_id":       i.InvocationID,
		"request_type":        i.RequestType,
		"logical_resource_id": i.LogicalResourceID,
		"stack_id":            i.StackID,
	} {
		if value = strings.TrimSpace(value); value != "" {
			out[key] = value
		}
	}
	return out
}

// LogEntry is the form handed to an ErrorNotifier and recorded by TestLogger.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Message    string         `json:"message"`
	Invocation Invocation     `json:"invocation"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// StructuredLogger is the logging surface used by the key-pair handler.
//
// Loggers are immutable: With* calls return a derived logger and leave the receiver untouched.
type StructuredLogger interface {
	Debug(message string, fields ...map[string]any)
	Info(message string, fields ...map[string]any)
	Warn(message string, fields ...map[string]any)
	Error(message string, fields ...map[string]any)

	WithField(key string, value any) StructuredLogger
	WithFields(fields map[string]any) StructuredLogger

	// WithInvocation scopes the logger to one custom resource event.
	WithInvocation(inv Invocation) StructuredLogger

	// Flush writes buffered output and waits for pending error notifications until ctx is done.
	Flush(ctx context.Context) error
}

// LoggerConfig selects output format and level.
type LoggerConfig struct {
	// Format is "json" or "console"; empty picks json inside Lambda and console elsewhere.
	Format string
	Level  string
	Caller bool
}

const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
)

// LoggerConfigFromEnv reads LOG_LEVEL and LOG_FORMAT. Unset values stay empty so implementations
// apply their own defaults.
func LoggerConfigFromEnv(lookup func(string) (string, bool)) LoggerConfig {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var cfg LoggerConfig
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvLogFormat); ok {
		cfg.Format = strings.ToLower(strings.TrimSpace(v))
	}
	return cfg
}

// MergeFields flattens field sets left to right; later keys win.
func MergeFields(sets ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}
