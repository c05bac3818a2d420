// Package accesswindow models the bounded interval during which the key-pair handler may read
// the private key parameter.
//
// A Window is computed once, when the provisioning stack is synthesized, and is rendered both as
// an IAM condition on the read grant and as environment variables on the handler so that every
// read is checked in-process as well.
package accesswindow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Duration is the fixed length of every access window.
const Duration = 3 * time.Hour

const (
	EnvNotBefore = "ACCESS_WINDOW_NOT_BEFORE"
	EnvNotAfter  = "ACCESS_WINDOW_NOT_AFTER"
)

const (
	conditionKeyCurrentTime = "aws:CurrentTime"
	conditionNotBefore      = "DateGreaterThanEquals"
	conditionNotAfter       = "DateLessThan"
)

// timestampLayout matches the ISO-8601 form IAM accepts for date conditions.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrInvalidWindow = errors.New("accesswindow: invalid window")

// Window is the half-open interval [NotBefore, NotAfter).
type Window struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// New returns the window starting at now and lasting Duration.
func New(now time.Time) Window {
	start := now.UTC().Truncate(time.Millisecond)
	return Window{
		NotBefore: start,
		NotAfter:  start.Add(Duration),
	}
}

func (w Window) IsZero() bool {
	return w.NotBefore.IsZero() && w.NotAfter.IsZero()
}

// Contains reports whether t falls inside the window. NotBefore is inclusive, NotAfter exclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.NotBefore) && t.Before(w.NotAfter)
}

func (w Window) Validate() error {
	if w.NotBefore.IsZero() || w.NotAfter.IsZero() {
		return fmt.Errorf("%w: missing bound", ErrInvalidWindow)
	}
	if !w.NotAfter.After(w.NotBefore) {
		return fmt.Errorf("%w: not_after must be after not_before", ErrInvalidWindow)
	}
	return nil
}

// Conditions renders the window as an IAM policy condition block on aws:CurrentTime with the same
// inclusive NotBefore and exclusive NotAfter as Contains.
func (w Window) Conditions() map[string]any {
	return map[string]any{
		conditionNotBefore: map[string]any{
			conditionKeyCurrentTime: formatTimestamp(w.NotBefore),
		},
		conditionNotAfter: map[string]any{
			conditionKeyCurrentTime: formatTimestamp(w.NotAfter),
		},
	}
}

// Env renders the window as handler environment variables.
func (w Window) Env() map[string]string {
	return map[string]string{
		EnvNotBefore: formatTimestamp(w.NotBefore),
		EnvNotAfter:  formatTimestamp(w.NotAfter),
	}
}

// FromEnv reads a window written by Env. ok is false when neither bound is set.
func FromEnv(lookup func(string) (string, bool)) (Window, bool, error) {
	if lookup == nil {
		return Window{}, false, nil
	}
	rawBefore, hasBefore := lookupTrimmed(lookup, EnvNotBefore)
	rawAfter, hasAfter := lookupTrimmed(lookup, EnvNotAfter)
	if !hasBefore && !hasAfter {
		return Window{}, false, nil
	}
	if !hasBefore || !hasAfter {
		return Window{}, false, fmt.Errorf("%w: both %s and %s are required", ErrInvalidWindow, EnvNotBefore, EnvNotAfter)
	}

	notBefore, err := time.Parse(time.RFC3339Nano, rawBefore)
	if err != nil {
		return Window{}, false, fmt.Errorf("%w: parse %s: %v", ErrInvalidWindow, EnvNotBefore, err)
	}
	notAfter, err := time.Parse(time.RFC3339Nano, rawAfter)
	if err != nil {
		return Window{}, false, fmt.Errorf("%w: parse %s: %v", ErrInvalidWindow, EnvNotAfter, err)
	}

	w := Window{NotBefore: notBefore.UTC(), NotAfter: notAfter.UTC()}
	if err := w.Validate(); err != nil {
		return Window{}, false, err
	}
	return w, true, nil
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", formatTimestamp(w.NotBefore), formatTimestamp(w.NotAfter))
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func lookupTrimmed(lookup func(string) (string, bool), key string) (string, bool) {
	value, ok := lookup(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
