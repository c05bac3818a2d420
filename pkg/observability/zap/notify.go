package zap

import (
	"context"
	"fmt"
	"sync"
	"time"

	ubzap "go.uber.org/zap"

	"github.com/theory-cloud/cfkeypair/pkg/observability"
)

const notifyTimeout = 5 * time.Second

// notifyQueue delivers Error entries on one background goroutine. Delivery problems are written to
// report and never re-queued.
type notifyQueue struct {
	notifier observability.ErrorNotifier
	report   *ubzap.Logger
	attempts int
	backoff  time.Duration

	entries chan observability.LogEntry
	pending sync.WaitGroup
}

func newNotifyQueue(n observability.ErrorNotifier, report *ubzap.Logger, attempts int, backoff time.Duration, buffer int) *notifyQueue {
	q := &notifyQueue{
		notifier: n,
		report:   report,
		attempts: attempts,
		backoff:  backoff,
		entries:  make(chan observability.LogEntry, buffer),
	}
	go q.run()
	return q
}

// push never blocks; an entry that finds the buffer full is dropped and reported.
func (q *notifyQueue) push(entry observability.LogEntry) {
	q.pending.Add(1)
	select {
	case q.entries <- entry:
	default:
		q.pending.Done()
		q.report.Warn("error notification dropped",
			ubzap.String("dropped_message", entry.Message),
			ubzap.Int("buffer", cap(q.entries)))
	}
}

func (q *notifyQueue) run() {
	for entry := range q.entries {
		if err := q.deliver(entry); err != nil {
			q.report.Warn("error notification failed",
				ubzap.String("dropped_message", entry.Message),
				ubzap.Error(err))
		}
		q.pending.Done()
	}
}

func (q *notifyQueue) deliver(entry observability.LogEntry) error {
	var err error
	for attempt := 1; attempt <= q.attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		err = q.notifier.Notify(ctx, entry)
		cancel()
		if err == nil {
			return nil
		}
		if attempt < q.attempts {
			time.Sleep(q.backoff * time.Duration(attempt))
		}
	}
	return fmt.Errorf("notify after %d attempts: %w", q.attempts, err)
}

// wait blocks until every pushed entry is delivered or given up, or ctx is done.
func (q *notifyQueue) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("observability/zap: notifications still pending: %w", ctx.Err())
	}
}
