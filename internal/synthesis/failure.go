package synthesis

import (
	"context"
	"errors"
	"fmt"
)

// Reason classifies why a synthesis call failed.
type Reason string

const (
	ReasonNetwork        Reason = "NetworkError"
	ReasonEmptyResponse  Reason = "EmptyResponse"
	ReasonSchemaMismatch Reason = "SchemaMismatch"
	ReasonTimeout        Reason = "Timeout"
	ReasonNotConfigured  Reason = "NotConfigured"
)

// Failure is the single error type surfaced by the Gateway. Every failure is
// retryable by the user through a regenerate action.
type Failure struct {
	Op     string
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("synthesis %s failed: %s", f.Op, f.Reason)
	}
	return fmt.Sprintf("synthesis %s failed: %s: %v", f.Op, f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// ErrNotConfigured is returned by the Unconfigured provider.
var ErrNotConfigured = errors.New("no synthesis provider configured")

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// classify turns a provider error into a Failure.
func classify(ctx context.Context, op string, err error) *Failure {
	if f, ok := AsFailure(err); ok {
		return f
	}
	switch {
	case errors.Is(err, ErrNotConfigured):
		return &Failure{Op: op, Reason: ReasonNotConfigured, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Failure{Op: op, Reason: ReasonTimeout, Err: err}
	default:
		return &Failure{Op: op, Reason: ReasonNetwork, Err: err}
	}
}

func schemaMismatch(op string, err error) *Failure {
	return &Failure{Op: op, Reason: ReasonSchemaMismatch, Err: err}
}
