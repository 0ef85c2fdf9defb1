// Package queue schedules timestamp-keyed events and calls a handler from one
// background goroutine as each timestamp elapses, in ascending timestamp order.
//
// Every operation and the worker share a single lock. With the default
// LockedDispatch the handler runs while that lock is held: it observes a store
// no other goroutine can change, and in exchange a slow handler delays every
// Add, Remove and Update caller as well as later events. A handler must not
// call back into its own Queue in this mode, doing so deadlocks. Use
// DetachedDispatch when handlers need to reschedule events.
//
// Stop must be called before releasing anything the handler touches. Once Stop
// returns the handler is never invoked again, not even for events whose
// timestamp has already elapsed.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RuiFG/timedqueue/clock"
	"github.com/RuiFG/timedqueue/common/safe"
	"github.com/RuiFG/timedqueue/common/status"
	"github.com/RuiFG/timedqueue/index"
	"github.com/RuiFG/timedqueue/log"
	"github.com/pkg/errors"
	"github.com/uber-go/tally/v4"
)

var ErrClosed = errors.New("queue is stopped")

// Handler receives expired events on the worker goroutine.
type Handler[T comparable] interface {
	OnTimestampExpire(timestamp clock.Timestamp, value T)
}

type HandlerFunc[T comparable] func(timestamp clock.Timestamp, value T)

func (f HandlerFunc[T]) OnTimestampExpire(timestamp clock.Timestamp, value T) {
	f(timestamp, value)
}

type Queue[T comparable] struct {
	options Options
	logger  log.Logger
	metrics *queueMetrics
	handler Handler[T]

	mutex  sync.Mutex
	events *index.DualIndex[T]
	status status.Status

	//signalled under mutex by every mutation, capacity 1 so signals coalesce
	wakeChan chan struct{}
	//closed by Stop
	doneChan chan struct{}
	//closed when the worker goroutine returns
	exitChan chan struct{}
}

// New starts a queue whose worker calls handler for every expired event.
func New[T comparable](handler Handler[T], opts ...Option) *Queue[T] {
	if handler == nil {
		panic("queue: nil handler")
	}
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = log.Global()
	}
	if options.Scope == nil {
		options.Scope = tally.NoopScope
	}
	q := &Queue[T]{
		options:  options,
		logger:   options.Logger.Named(options.Name),
		metrics:  newQueueMetrics(options.Scope),
		handler:  handler,
		events:   index.New[T](),
		status:   status.Ready,
		wakeChan: make(chan struct{}, 1),
		doneChan: make(chan struct{}),
		exitChan: make(chan struct{}),
	}
	status.CAP(&q.status, status.Ready, status.Running)
	go q.run()
	q.logger.Infow("started", "dispatch", options.DispatchMode.String(), "max_sleep", options.MaxSleep)
	return q
}

// NewWithContext is New, plus the queue stops itself once ctx is done.
func NewWithContext[T comparable](ctx context.Context, handler Handler[T], opts ...Option) *Queue[T] {
	q := New(handler, opts...)
	safe.Go(func() error {
		select {
		case <-ctx.Done():
			q.Stop()
		case <-q.exitChan:
		}
		return nil
	})
	return q
}

// Add schedules value to expire at timestamp. Timestamps and values are both
// unique within a queue; a duplicate of either is rejected and nothing changes.
func (q *Queue[T]) Add(timestamp clock.Timestamp, value T) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed() {
		q.metrics.rejected.Inc(1)
		return ErrClosed
	}
	if err := q.events.Add(timestamp, value); err != nil {
		q.metrics.rejected.Inc(1)
		q.logger.Warnw("rejected event", "timestamp", timestamp, "value", value, "error", err)
		return errors.WithMessagef(err, "failed to add event at %s", timestamp)
	}
	q.metrics.scheduled.Inc(1)
	q.logger.Debugw("scheduled event", "timestamp", timestamp, "value", value)
	q.signal()
	return nil
}

// RemoveByValue cancels the event scheduled for value, reporting whether there was one.
func (q *Queue[T]) RemoveByValue(value T) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed() {
		return false
	}
	event, ok := q.events.RemoveByValue(value)
	if ok {
		q.removed(event)
	}
	return ok
}

// RemoveByTimestamp cancels the event scheduled at timestamp, reporting whether there was one.
func (q *Queue[T]) RemoveByTimestamp(timestamp clock.Timestamp) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed() {
		return false
	}
	event, ok := q.events.RemoveByTimestamp(timestamp)
	if ok {
		q.removed(event)
	}
	return ok
}

// UpdateValue swaps the value of the event at timestamp. It reports whether
// timestamp was scheduled; an absent timestamp is not an error.
func (q *Queue[T]) UpdateValue(timestamp clock.Timestamp, value T) (bool, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed() {
		return false, nil
	}
	found, err := q.events.UpdateValue(timestamp, value)
	if err != nil {
		q.metrics.rejected.Inc(1)
		q.logger.Warnw("rejected value update", "timestamp", timestamp, "value", value, "error", err)
		return found, errors.WithMessagef(err, "failed to update value at %s", timestamp)
	}
	if found {
		q.updated("updated value", timestamp, value)
	}
	return found, nil
}

// UpdateTimestamp moves the event for value to timestamp. It reports whether
// value was scheduled; an absent value is not an error.
func (q *Queue[T]) UpdateTimestamp(timestamp clock.Timestamp, value T) (bool, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed() {
		return false, nil
	}
	found, err := q.events.UpdateTimestamp(timestamp, value)
	if err != nil {
		q.metrics.rejected.Inc(1)
		q.logger.Warnw("rejected timestamp update", "timestamp", timestamp, "value", value, "error", err)
		return found, errors.WithMessagef(err, "failed to move value to %s", timestamp)
	}
	if found {
		q.updated("updated timestamp", timestamp, value)
	}
	return found, nil
}

// Stop halts the worker and waits for it to exit. It is safe to call more
// than once and from several goroutines; every call returns after the worker
// is gone. Calling Stop from the handler deadlocks.
func (q *Queue[T]) Stop() {
	q.mutex.Lock()
	stopping := status.CAP(&q.status, status.Running, status.Closed)
	if stopping {
		close(q.doneChan)
	}
	pending := q.events.Len()
	q.mutex.Unlock()

	<-q.exitChan
	if stopping {
		q.logger.Infow("stopped", "pending", pending)
	}
}

// Len is the number of scheduled events.
func (q *Queue[T]) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.events.Len()
}

// Next returns the earliest scheduled event.
func (q *Queue[T]) Next() (index.Event[T], bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.events.Peek()
}

func (q *Queue[T]) TimestampOf(value T) (clock.Timestamp, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.events.TimestampOf(value)
}

func (q *Queue[T]) ValueAt(timestamp clock.Timestamp) (T, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.events.ValueAt(timestamp)
}

func (q *Queue[T]) closed() bool {
	return status.Load(&q.status).Closed()
}

// signal must be called with mutex held.
func (q *Queue[T]) signal() {
	q.metrics.pending.Update(float64(q.events.Len()))
	select {
	case q.wakeChan <- struct{}{}:
	default:
	}
}

func (q *Queue[T]) removed(event index.Event[T]) {
	q.metrics.removed.Inc(1)
	q.logger.Debugw("removed event", "timestamp", event.Timestamp, "value", event.Value)
	q.signal()
}

func (q *Queue[T]) updated(msg string, timestamp clock.Timestamp, value T) {
	q.metrics.updated.Inc(1)
	q.logger.Debugw(msg, "timestamp", timestamp, "value", value)
	q.signal()
}

func (q *Queue[T]) run() {
	defer close(q.exitChan)
	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	defer timer.Stop()

	for {
		q.mutex.Lock()
		if q.closed() {
			q.mutex.Unlock()
			return
		}
		var batch []index.Event[T]
		if q.options.DispatchMode == DetachedDispatch {
			if batch = q.events.PopExpired(clock.Now()); len(batch) > 0 {
				q.metrics.pending.Update(float64(q.events.Len()))
			}
		} else {
			q.dispatchLocked()
		}
		deadline := q.events.Earliest()
		q.mutex.Unlock()

		if len(batch) > 0 {
			q.dispatchDetached(batch)
			continue
		}

		var timeoutChan <-chan time.Time
		if deadline != clock.Never {
			resetTimer(timer, q.sleepFor(deadline))
			timeoutChan = timer.C
		}
		select {
		case <-q.doneChan:
			return
		case <-q.wakeChan:
		case <-timeoutChan:
		}
	}
}

// dispatchLocked drains every elapsed event, must be called with mutex held.
// Events that elapse while handlers run are drained in the same pass.
func (q *Queue[T]) dispatchLocked() {
	now := clock.Now()
	for {
		next, ok := q.events.Peek()
		if !ok {
			return
		}
		if next.Timestamp.After(now) {
			if now = clock.Now(); next.Timestamp.After(now) {
				return
			}
		}
		q.invoke(next)
		q.events.RemoveByTimestamp(next.Timestamp)
		q.metrics.pending.Update(float64(q.events.Len()))
	}
}

func (q *Queue[T]) dispatchDetached(batch []index.Event[T]) {
	for i, event := range batch {
		if q.closed() {
			q.metrics.dropped.Inc(int64(len(batch) - i))
			q.logger.Infow("dropped expired events", "count", len(batch)-i)
			return
		}
		q.invoke(event)
	}
}

func (q *Queue[T]) invoke(event index.Event[T]) {
	start := clock.Now()
	q.metrics.lateness.Record(start.Sub(event.Timestamp))
	if err := safe.Run(func() error {
		q.handler.OnTimestampExpire(event.Timestamp, event.Value)
		return nil
	}); err != nil {
		q.metrics.panics.Inc(1)
		q.logger.Errorw("expire handler panicked",
			"timestamp", event.Timestamp, "value", event.Value, "error", fmt.Sprintf("%+v", err))
	}
	q.metrics.latency.Record(clock.Now().Sub(start))
	q.metrics.dispatched.Inc(1)
}

func (q *Queue[T]) sleepFor(deadline clock.Timestamp) time.Duration {
	d := deadline.Until()
	if d < 0 {
		d = 0
	}
	if q.options.MaxSleep > 0 && d > q.options.MaxSleep {
		d = q.options.MaxSleep
	}
	return d
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

func resetTimer(timer *time.Timer, d time.Duration) {
	stopTimer(timer)
	timer.Reset(d)
}
