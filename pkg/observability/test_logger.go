package observability

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/theory-cloud/cfkeypair/pkg/sanitization"
)

// TestLogger records sanitized entries in memory. Loggers derived with With* append to the same
// record.
type TestLogger struct {
	record *entryRecord
	fields map[string]any
	inv    Invocation
}

type entryRecord struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ StructuredLogger = (*TestLogger)(nil)

func NewTestLogger() *TestLogger {
	return &TestLogger{record: &entryRecord{}}
}

func (l *TestLogger) Debug(message string, fields ...map[string]any) { l.add("debug", message, fields) }
func (l *TestLogger) Info(message string, fields ...map[string]any)  { l.add("info", message, fields) }
func (l *TestLogger) Warn(message string, fields ...map[string]any)  { l.add("warn", message, fields) }
func (l *TestLogger) Error(message string, fields ...map[string]any) { l.add("error", message, fields) }

func (l *TestLogger) WithField(key string, value any) StructuredLogger {
	return l.WithFields(map[string]any{key: value})
}

func (l *TestLogger) WithFields(fields map[string]any) StructuredLogger {
	return &TestLogger{record: l.record, fields: MergeFields(l.fields, fields), inv: l.inv}
}

func (l *TestLogger) WithInvocation(inv Invocation) StructuredLogger {
	return &TestLogger{record: l.record, fields: l.fields, inv: inv}
}

// Flush fails only when ctx is already done.
func (l *TestLogger) Flush(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

func (l *TestLogger) Entries() []LogEntry {
	l.record.mu.Lock()
	defer l.record.mu.Unlock()
	return append([]LogEntry(nil), l.record.entries...)
}

// EntriesAt returns the recorded entries with the given level.
func (l *TestLogger) EntriesAt(level string) []LogEntry {
	var out []LogEntry
	for _, entry := range l.Entries() {
		if entry.Level == level {
			out = append(out, entry)
		}
	}
	return out
}

// Contains reports whether substr appears anywhere in a recorded entry.
func (l *TestLogger) Contains(substr string) bool {
	for _, entry := range l.Entries() {
		if strings.Contains(fmt.Sprintf("%s %+v %v", entry.Message, entry.Invocation, entry.Fields), substr) {
			return true
		}
	}
	return false
}

func (l *TestLogger) add(level, message string, sets []map[string]any) {
	merged := MergeFields(append([]map[string]any{l.fields}, sets...)...)
	fields := make(map[string]any, len(merged))
	for k, v := range merged {
		fields[k] = sanitization.SanitizeFieldValue(k, v)
	}

	l.record.mu.Lock()
	defer l.record.mu.Unlock()
	l.record.entries = append(l.record.entries, LogEntry{
		Timestamp:  time.Now(),
		Level:      level,
		Message:    sanitization.SanitizeLogString(message),
		Invocation: l.inv,
		Fields:     fields,
	})
}
