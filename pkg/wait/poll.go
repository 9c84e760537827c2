package wait

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
	"github.com/devicelab-dev/backyard-e2e/pkg/logger"
)

// Outcome is the result of a wait: either satisfied with a value, or timed out.
type Outcome[T any] struct {
	Value     T
	Satisfied bool
	Attempts  int
	Elapsed   time.Duration
	Spec      Spec
}

// TimedOut reports whether the wait ended without the condition holding.
func (o Outcome[T]) TimedOut() bool {
	return !o.Satisfied
}

// Require returns the value, or a wait timeout error if the condition never held.
func (o Outcome[T]) Require() (T, error) {
	if o.Satisfied {
		return o.Value, nil
	}
	var zero T
	desc := o.Spec.Description
	if desc == "" {
		desc = "condition"
	}
	return zero, core.ErrWaitTimeout.
		WithMessage(fmt.Sprintf("%s not satisfied within %s", desc, o.Spec.Timeout)).
		WithDetails(map[string]interface{}{
			"timeout":  o.Spec.Timeout.String(),
			"interval": o.Spec.Interval.String(),
			"attempts": o.Attempts,
			"elapsed":  o.Elapsed.String(),
		})
}

// ProbeFunc evaluates a condition once. It returns the observed value and
// whether the condition holds. A non-nil error aborts the wait.
type ProbeFunc[T any] func(ctx context.Context) (T, bool, error)

// Poll evaluates probe immediately and then every spec.Interval until it is
// satisfied or spec.Timeout has elapsed. The only error returned is one from
// the probe itself (passed through unchanged) or from ctx.
func Poll[T any](ctx context.Context, spec Spec, probe ProbeFunc[T]) (Outcome[T], error) {
	spec.Interval = clampInterval(spec.Interval, spec.Timeout)
	out := Outcome[T]{Spec: spec}

	limiter := rate.NewLimiter(rate.Every(spec.Interval), 1)
	start := time.Now()

	for {
		if err := limiter.Wait(ctx); err != nil {
			out.Elapsed = time.Since(start)
			if cerr := ctx.Err(); cerr != nil {
				return out, cerr
			}
			// next evaluation would land past the ctx deadline
			return out, context.DeadlineExceeded
		}

		value, ok, err := probe(ctx)
		out.Attempts++
		out.Elapsed = time.Since(start)
		if err != nil {
			return out, err
		}
		out.Value = value
		if ok {
			out.Satisfied = true
			return out, nil
		}
		if out.Elapsed >= spec.Timeout {
			logger.Debug("wait: %s not satisfied after %d attempts (%s)", spec, out.Attempts, out.Elapsed)
			return out, nil
		}
	}
}

// Until is the non-raising boolean form: false on timeout.
func Until(ctx context.Context, spec Spec, fn func(ctx context.Context) (bool, error)) (bool, error) {
	out, err := Poll(ctx, spec, func(ctx context.Context) (struct{}, bool, error) {
		ok, err := fn(ctx)
		return struct{}{}, ok, err
	})
	if err != nil {
		return false, err
	}
	return out.Satisfied, nil
}

// Must is the raising boolean form: a wait timeout error on timeout.
func Must(ctx context.Context, spec Spec, fn func(ctx context.Context) (bool, error)) error {
	out, err := Poll(ctx, spec, func(ctx context.Context) (struct{}, bool, error) {
		ok, err := fn(ctx)
		return struct{}{}, ok, err
	})
	if err != nil {
		return err
	}
	_, err = out.Require()
	return err
}
