package cfkeypair

import (
	"errors"
	"fmt"

	"github.com/theory-cloud/cfkeypair/pkg/keyderive"
	"github.com/theory-cloud/cfkeypair/pkg/secretstore"
)

// Error is a reconciliation failure with a stable code. Cause keeps the original error chain.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *Error) WithCause(err error) *Error {
	if e == nil {
		return nil
	}
	e.Cause = err
	return e
}

func AsError(err error) (*Error, bool) {
	var keyErr *Error
	if errors.As(err, &keyErr) {
		return keyErr, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost *Error in err's chain, or "" when there is none.
func CodeOf(err error) string {
	if keyErr, ok := AsError(err); ok {
		return keyErr.Code
	}
	return ""
}

// Retryable reports whether the invoking framework may usefully retry the failed event.
func Retryable(err error) bool {
	return CodeOf(err) == ErrorCodeUnavailable || secretstore.Retryable(err)
}

// classifyError wraps collaborator failures in an *Error. Errors that already carry a code are
// returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, secretstore.ErrAccessDenied):
		return NewError(ErrorCodeAccessDenied, errorMessageAccessDenied).WithCause(err)
	case errors.Is(err, secretstore.ErrNotFound):
		return NewError(ErrorCodeNotFound, errorMessageNotFound).WithCause(err)
	case errors.Is(err, secretstore.ErrUnavailable):
		return NewError(ErrorCodeUnavailable, errorMessageUnavailable).WithCause(err)
	case errors.Is(err, keyderive.ErrMalformedKey):
		return NewError(ErrorCodeMalformedKey, errorMessageMalformedKey).WithCause(err)
	default:
		return NewError(ErrorCodeInternal, errorMessageInternal).WithCause(err)
	}
}
