// Package logger holds the process-wide structured logger.
//
// The handler binary installs its zap logger here at cold start so that code running outside an
// invocation, such as startup failures and flushes, reports through the same sink.
package logger

import (
	"context"
	"sync"

	"github.com/theory-cloud/cfkeypair/pkg/observability"
)

var (
	globalMu     sync.RWMutex
	globalLogger observability.StructuredLogger = observability.NewNoOpLogger()
)

// Logger returns the process-wide logger. It is never nil.
func Logger() observability.StructuredLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetLogger replaces the process-wide logger. Passing nil resets it to a no-op logger.
func SetLogger(next observability.StructuredLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if next == nil {
		globalLogger = observability.NewNoOpLogger()
		return
	}
	globalLogger = next
}

// Flush flushes the process-wide logger.
func Flush(ctx context.Context) error {
	return Logger().Flush(ctx)
}
