// Package fallback tries a list of alternatives in order until one works.
package fallback

import (
	"context"
	"errors"
	"fmt"
)

// ErrExhausted is returned when every step failed.
var ErrExhausted = errors.New("all attempts failed")

// Named is implemented by steps that have a display name for error messages.
type Named interface {
	StepName() string
}

// Try runs attempt for each step in order and returns the first step that
// succeeds. Each failure is passed to report (which may be nil) before the
// next step is tried. When every step fails the returned error wraps
// ErrExhausted and every individual failure. Cancellation of ctx stops the
// iteration and its error is returned alongside the failures so far.
func Try[T any](ctx context.Context, steps []T, attempt func(context.Context, T) error, report func(T, error)) (T, error) {
	var zero T
	errs := []error{ErrExhausted}
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return zero, errors.Join(append(errs, err)...)
		}
		err := attempt(ctx, step)
		if err == nil {
			return step, nil
		}
		err = fmt.Errorf("%s: %w", label(step, i), err)
		errs = append(errs, err)
		if report != nil {
			report(step, err)
		}
	}
	return zero, errors.Join(errs...)
}

func label[T any](step T, i int) string {
	if n, ok := any(step).(Named); ok {
		return n.StepName()
	}
	return fmt.Sprintf("step %d", i+1)
}
