package secretstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Memory is an in-process Store for tests and local runs.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	errs   map[string]error
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{values: map[string]string{}, errs: map[string]error{}}
}

// Fail makes every subsequent operation on name return err. A nil err clears it.
func (m *Memory) Fail(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, name)
		return
	}
	m.errs[name] = err
}

func (m *Memory) Get(ctx context.Context, name string, _ bool) (string, error) {
	if err := ensureContext(ctx).Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	name = strings.TrimSpace(name)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs[name]; err != nil {
		return "", err
	}
	value, ok := m.values[name]
	if !ok {
		return "", fmt.Errorf("%w: parameter %q", ErrNotFound, name)
	}
	return value, nil
}

func (m *Memory) Put(ctx context.Context, name, value string) error {
	if err := ensureContext(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	name = strings.TrimSpace(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[name]; err != nil {
		return err
	}
	m.values[name] = value
	return nil
}
