package tracewrap

import (
	"errors"
	"fmt"
)

// ErrNoResult marks an async call whose result channel was nil or closed
// before delivering a Result.
var ErrNoResult = errors.New("async call delivered no result")

// ErrGoexit marks a call that ended through runtime.Goexit.
var ErrGoexit = errors.New("goroutine exited during call")

// PanicError is what gets recorded on a span when the wrapped function panics.
// The panic itself is always re-raised with the original value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprint(e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
