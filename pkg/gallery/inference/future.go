package inference

import (
	"errors"
	"sync"

	"github.com/alitto/pond/v2"
)

var ErrNotReady = errors.New("result not ready")

// Future is a handle to an in-flight backend request. Ready never blocks.
type Future[T any] struct {
	done <-chan struct{}
	wait func() (T, error)
}

func FromResult[T any](result pond.Result[T]) *Future[T] {
	return &Future[T]{
		done: result.Done(),
		wait: result.Wait,
	}
}

func Resolved[T any](value T, err error) *Future[T] {
	done := make(chan struct{})
	close(done)
	return &Future[T]{
		done: done,
		wait: func() (T, error) { return value, err },
	}
}

// NewPromise returns an unresolved future and the function that resolves it.
// Only the first call to resolve has an effect.
func NewPromise[T any]() (*Future[T], func(T, error)) {
	done := make(chan struct{})

	var (
		once  sync.Once
		value T
		err   error
	)

	future := &Future[T]{
		done: done,
		wait: func() (T, error) {
			<-done
			return value, err
		},
	}

	resolve := func(v T, e error) {
		once.Do(func() {
			value, err = v, e
			close(done)
		})
	}

	return future, resolve
}

func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns ErrNotReady until the request has resolved.
func (f *Future[T]) Result() (T, error) {
	if !f.Ready() {
		var zero T
		return zero, ErrNotReady
	}
	return f.wait()
}
