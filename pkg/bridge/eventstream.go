package bridge

import (
	"context"
	"sync"
)

// IterResult represents a single iteration result.
type IterResult[T any] struct {
	Value T
	Done  bool
}

// EventStream is a generic async event stream bridging one producer and one
// consumer. T is the event type, R is the final result type.
type EventStream[T any, R any] struct {
	mu            sync.Mutex
	queue         []T
	waiting       []chan<- IterResult[T]
	done          bool
	finalResultCh chan R
	isComplete    func(T) bool
	extractResult func(T) R
}

// NewEventStream creates a stream. isComplete marks the terminal event;
// extractResult derives the final result from it.
func NewEventStream[T any, R any](
	isComplete func(T) bool,
	extractResult func(T) R,
) *EventStream[T, R] {
	return &EventStream[T, R]{
		finalResultCh: make(chan R, 1),
		isComplete:    isComplete,
		extractResult: extractResult,
	}
}

// Push delivers an event to the consumer. Pushing the terminal event also
// resolves the final result. Events pushed after completion are dropped.
func (es *EventStream[T, R]) Push(event T) {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.done {
		return
	}

	if es.isComplete(event) {
		es.done = true
		es.finalResultCh <- es.extractResult(event)
	}

	if len(es.waiting) > 0 {
		waiter := es.waiting[0]
		es.waiting = es.waiting[1:]
		waiter <- IterResult[T]{Value: event}
	} else {
		es.queue = append(es.queue, event)
	}
}

// End completes the stream with the given result if no terminal event was
// pushed. Idempotent.
func (es *EventStream[T, R]) End(result R) {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.done {
		return
	}
	es.done = true
	es.finalResultCh <- result

	for _, waiter := range es.waiting {
		select {
		case waiter <- IterResult[T]{Done: true}:
		default:
		}
	}
	es.waiting = nil
	es.queue = nil
}

// Iterator returns a channel of events, closed when the stream completes or
// the context is cancelled. Queued events are drained before completion is
// reported.
func (es *EventStream[T, R]) Iterator(ctx context.Context) <-chan IterResult[T] {
	ch := make(chan IterResult[T])

	go func() {
		defer close(ch)
		for {
			es.mu.Lock()

			if len(es.queue) > 0 {
				event := es.queue[0]
				es.queue = es.queue[1:]
				es.mu.Unlock()
				select {
				case ch <- IterResult[T]{Value: event}:
				case <-ctx.Done():
					return
				}
				continue
			}

			if es.done {
				es.mu.Unlock()
				return
			}

			waiter := make(chan IterResult[T], 1)
			es.waiting = append(es.waiting, waiter)
			es.mu.Unlock()

			select {
			case result := <-waiter:
				if result.Done {
					return
				}
				select {
				case ch <- result:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// Result returns a channel delivering the final result.
func (es *EventStream[T, R]) Result() <-chan R {
	return es.finalResultCh
}

// IsDone reports whether the stream has completed.
func (es *EventStream[T, R]) IsDone() bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.done
}
