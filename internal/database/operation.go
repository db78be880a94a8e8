package database

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/zekret/vault/internal/errors"
)

// OperationPolicy bounds store operations with a per-attempt deadline.
//
// A timed out attempt is retried once after Backoff. Any other error, including
// cancellation of the caller's context, is returned as-is. A second timeout is
// reported as apperrors.ErrTimeout.
type OperationPolicy struct {
	Timeout time.Duration
	Backoff time.Duration
}

// NewOperationPolicy creates an OperationPolicy.
func NewOperationPolicy(timeout, backoff time.Duration) OperationPolicy {
	return OperationPolicy{Timeout: timeout, Backoff: backoff}
}

// Run executes fn under the policy.
func (p OperationPolicy) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	expired, err := p.attempt(ctx, fn)
	if !p.timedOut(ctx, err, expired) {
		return err
	}

	if p.Backoff > 0 {
		timer := time.NewTimer(p.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	expired, err = p.attempt(ctx, fn)
	if p.timedOut(ctx, err, expired) {
		return apperrors.Wrap(apperrors.ErrTimeout, err.Error())
	}
	return err
}

// attempt runs fn once and reports whether the attempt deadline had passed when fn
// returned. Drivers surface that deadline differently: lib/pq fails the statement
// with a server side cancellation instead of context.DeadlineExceeded.
func (p OperationPolicy) attempt(ctx context.Context, fn func(ctx context.Context) error) (bool, error) {
	if p.Timeout <= 0 {
		return false, fn(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	err := fn(attemptCtx)
	return errors.Is(attemptCtx.Err(), context.DeadlineExceeded), err
}

// timedOut distinguishes our own deadline from a caller that went away.
func (p OperationPolicy) timedOut(ctx context.Context, err error, expired bool) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	return expired || errors.Is(err, context.DeadlineExceeded)
}
