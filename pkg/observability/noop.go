package observability

import "context"

type discard struct{}

// NewNoOpLogger returns a logger that drops everything.
func NewNoOpLogger() StructuredLogger { return discard{} }

func (discard) Debug(string, ...map[string]any) {}
func (discard) Info(string, ...map[string]any)  {}
func (discard) Warn(string, ...map[string]any)  {}
func (discard) Error(string, ...map[string]any) {}

func (d discard) WithField(string, any) StructuredLogger     { return d }
func (d discard) WithFields(map[string]any) StructuredLogger { return d }
func (d discard) WithInvocation(Invocation) StructuredLogger { return d }
func (discard) Flush(context.Context) error                  { return nil }
