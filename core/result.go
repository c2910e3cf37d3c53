package core

import "fmt"

// Outcome is the result of a strict operation that may have been rescued by
// a fallback. Cause holds the strict path's error when FellBack is set.
type Outcome struct {
	Data     []byte
	FellBack bool
	Cause    error
}

// Attempt captures the result of a strict path so a fallback can be chained.
type Attempt struct {
	data []byte
	err  error
}

// Try runs the strict path.
func Try(strict func() ([]byte, error)) Attempt {
	data, err := strict()
	return Attempt{data: data, err: err}
}

// Err returns the strict path's error, if any.
func (a Attempt) Err() error { return a.err }

// OrElse returns the strict result, or runs fallback with the strict error.
// The returned error is non-nil only when both paths failed.
func (a Attempt) OrElse(fallback func(cause error) ([]byte, error)) (Outcome, error) {
	if a.err == nil {
		return Outcome{Data: a.data}, nil
	}
	data, err := fallback(a.err)
	if err != nil {
		return Outcome{Cause: a.err}, fmt.Errorf("fallback after %v: %w", a.err, err)
	}
	return Outcome{Data: data, FellBack: true, Cause: a.err}, nil
}
