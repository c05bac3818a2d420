// Package secretstore reads and writes named secret values.
//
// The default backend is SSM Parameter Store. Windowed wraps any Store so that reads are only
// served while an access window is open.
package secretstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("secretstore: not found")
	ErrAccessDenied = errors.New("secretstore: access denied")
	ErrUnavailable  = errors.New("secretstore: unavailable")
)

// Store is the secret store contract used by the key-pair handler.
type Store interface {
	// Get returns the current value of name. decrypt requests decryption of encrypted values.
	Get(ctx context.Context, name string, decrypt bool) (string, error)
	// Put writes value under name, replacing any existing value.
	Put(ctx context.Context, name, value string) error
}

// Retryable reports whether err is a transient store failure the caller may retry.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
