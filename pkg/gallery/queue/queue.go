package queue

import (
	"context"
	"errors"
	"sync"
)

var ErrTaskDoneUnderflow = errors.New("task done called more times than put")

// Queue is an unbounded FIFO safe for concurrent producers and consumers.
// Every Put must eventually be matched by a TaskDone for Join to return.
type Queue[T any] struct {
	mu         sync.Mutex
	items      []T
	unfinished int

	// available is closed and replaced whenever an item is added.
	available chan struct{}
	// drained is closed and replaced whenever unfinished drops to zero.
	drained chan struct{}
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		available: make(chan struct{}),
		drained:   make(chan struct{}),
	}
}

func (q *Queue[T]) Put(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, item)
	q.unfinished++

	close(q.available)
	q.available = make(chan struct{})
}

// Get blocks until an item is available or ctx is done.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, nil
		}
		available := q.available
		q.mu.Unlock()

		select {
		case <-available:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

func (q *Queue[T]) TaskDone() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= 0 {
		return ErrTaskDoneUnderflow
	}
	q.unfinished--
	if q.unfinished == 0 {
		close(q.drained)
		q.drained = make(chan struct{})
	}
	return nil
}

// Join blocks until every item ever put has been marked done or ctx is done.
func (q *Queue[T]) Join(ctx context.Context) error {
	q.mu.Lock()
	if q.unfinished == 0 {
		q.mu.Unlock()
		return nil
	}
	drained := q.drained
	q.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}
