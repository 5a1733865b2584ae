// Package cascade runs an ordered list of alternative strategies until one
// succeeds.
package cascade

import (
	"context"
	"errors"
	"fmt"

	"github.com/forPelevin/shortsclip/internal/types"
)

type Step[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Policy decides which failure is surfaced once every step has failed.
type Policy struct {
	// IsNoise marks failures that must not hide a meaningful one.
	IsNoise func(error) bool
	// PreferLast surfaces the last failure. Otherwise the first non-noise
	// failure wins, falling back to the last one.
	PreferLast bool
	Logf       func(format string, args ...any)
}

type Attempt struct {
	Name string
	Err  error
}

type ExhaustedError struct {
	Op       string
	Kind     error
	Attempts []Attempt
	Cause    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d attempt(s) failed: %v", e.Op, len(e.Attempts), e.Cause)
}

func (e *ExhaustedError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Cause}
	}
	return []error{e.Kind, e.Cause}
}

var errNoSteps = errors.New("no strategies configured")

// Run executes steps in order and returns the first success together with the
// name of the step that produced it. No step runs after a success.
func Run[T any](ctx context.Context, op string, kind error, steps []Step[T], p Policy) (T, string, error) {
	var zero T
	logf := p.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	var attempts []Attempt
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Name: s.Name, Err: err})
			return zero, "", &ExhaustedError{Op: op, Kind: kind, Attempts: attempts, Cause: err}
		}
		v, err := s.Run(ctx)
		if err == nil {
			if i > 0 {
				logf("%s: %q succeeded after %d failed attempt(s)", op, s.Name, i)
			}
			return v, s.Name, nil
		}
		logf("%s: attempt %d/%d %q failed: %s", op, i+1, len(steps), s.Name, types.FirstLine(err))
		attempts = append(attempts, Attempt{Name: s.Name, Err: err})
	}
	return zero, "", &ExhaustedError{Op: op, Kind: kind, Attempts: attempts, Cause: pick(attempts, p)}
}

func pick(attempts []Attempt, p Policy) error {
	if len(attempts) == 0 {
		return errNoSteps
	}
	last := attempts[len(attempts)-1].Err
	if p.PreferLast {
		return last
	}
	for _, a := range attempts {
		if p.IsNoise == nil || !p.IsNoise(a.Err) {
			return a.Err
		}
	}
	return last
}
