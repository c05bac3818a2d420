package secretstore

import (
	"context"
	"fmt"
	"time"

	"github.com/theory-cloud/cfkeypair/pkg/accesswindow"
)

// Clock provides the time used to evaluate the access window.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// WindowedStore serves reads only while its access window is open.
type WindowedStore struct {
	next   Store
	window accesswindow.Window
	clock  Clock
}

var _ Store = (*WindowedStore)(nil)

// Windowed wraps next so that every Get is checked against window. A nil clock uses wall time.
func Windowed(next Store, window accesswindow.Window, clock Clock) *WindowedStore {
	if clock == nil {
		clock = realClock{}
	}
	return &WindowedStore{next: next, window: window, clock: clock}
}

func (w *WindowedStore) Get(ctx context.Context, name string, decrypt bool) (string, error) {
	now := w.clock.Now()
	if !w.window.Contains(now) {
		return "", fmt.Errorf("%w: read of %q at %s outside access window %s",
			ErrAccessDenied, name, now.UTC().Format(time.RFC3339), w.window)
	}
	return w.next.Get(ctx, name, decrypt)
}

// Put is not gated; the window only governs reads.
func (w *WindowedStore) Put(ctx context.Context, name, value string) error {
	return w.next.Put(ctx, name, value)
}
