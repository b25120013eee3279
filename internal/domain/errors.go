package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrAccessDenied marks authorization failures (admin action without the
// admin role, row ownership violations). It is surfaced distinctly and never
// downgraded to success.
var ErrAccessDenied = errors.New("access denied")

// RetryableError wraps transient failures reaching the persistence adapter
// (network errors, timeouts). Callers surface these as retryable and leave
// local state untouched.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("temporary failure, retry: %v", e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as retryable. A nil err returns nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is worth retrying: an explicit
// RetryableError, a context deadline, or a net timeout.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
