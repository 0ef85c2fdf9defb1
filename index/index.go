// Package index implements the dual index behind a timed event queue: every
// scheduled event can be found by its timestamp and by its value, and the
// earliest event is always at hand.
//
// A DualIndex is not safe for concurrent use. The owner serializes every call
// with a single lock so that neither direction is ever observed half updated.
package index

import (
	"container/heap"

	"github.com/RuiFG/timedqueue/clock"
	"github.com/pkg/errors"
)

var (
	ErrDuplicateValue     = errors.New("value is already scheduled")
	ErrDuplicateTimestamp = errors.New("timestamp is already scheduled")
)

// Event is a scheduled (timestamp, value) pair.
type Event[T comparable] struct {
	Timestamp clock.Timestamp
	Value     T
}

// DualIndex keeps timestamp->value and value->timestamp as exact inverses.
// Both keys are unique; a call that would break that is rejected and changes nothing.
type DualIndex[T comparable] struct {
	byTimestamp map[clock.Timestamp]*entry[T]
	byValue     map[T]*entry[T]
	order       eventHeap[T]
}

func New[T comparable]() *DualIndex[T] {
	return &DualIndex[T]{
		byTimestamp: map[clock.Timestamp]*entry[T]{},
		byValue:     map[T]*entry[T]{},
	}
}

func (d *DualIndex[T]) Len() int {
	return len(d.order)
}

// Add schedules value at timestamp.
func (d *DualIndex[T]) Add(timestamp clock.Timestamp, value T) error {
	if _, ok := d.byValue[value]; ok {
		return ErrDuplicateValue
	}
	if _, ok := d.byTimestamp[timestamp]; ok {
		return ErrDuplicateTimestamp
	}
	e := &entry[T]{Event: Event[T]{Timestamp: timestamp, Value: value}}
	heap.Push(&d.order, e)
	d.byTimestamp[timestamp] = e
	d.byValue[value] = e
	return nil
}

// RemoveByValue drops the event scheduled for value, if any.
func (d *DualIndex[T]) RemoveByValue(value T) (Event[T], bool) {
	e, ok := d.byValue[value]
	if !ok {
		return Event[T]{}, false
	}
	d.remove(e)
	return e.Event, true
}

// RemoveByTimestamp drops the event scheduled at timestamp, if any.
func (d *DualIndex[T]) RemoveByTimestamp(timestamp clock.Timestamp) (Event[T], bool) {
	e, ok := d.byTimestamp[timestamp]
	if !ok {
		return Event[T]{}, false
	}
	d.remove(e)
	return e.Event, true
}

// UpdateValue replaces the value of the event at timestamp and keeps its timestamp.
// It reports whether timestamp was scheduled.
func (d *DualIndex[T]) UpdateValue(timestamp clock.Timestamp, value T) (bool, error) {
	e, ok := d.byTimestamp[timestamp]
	if !ok {
		return false, nil
	}
	if e.Value == value {
		return true, nil
	}
	if _, taken := d.byValue[value]; taken {
		return true, ErrDuplicateValue
	}
	delete(d.byValue, e.Value)
	e.Value = value
	d.byValue[value] = e
	return true, nil
}

// UpdateTimestamp moves the event for value to timestamp and keeps its value.
// It reports whether value was scheduled.
func (d *DualIndex[T]) UpdateTimestamp(timestamp clock.Timestamp, value T) (bool, error) {
	e, ok := d.byValue[value]
	if !ok {
		return false, nil
	}
	if e.Timestamp == timestamp {
		return true, nil
	}
	if _, taken := d.byTimestamp[timestamp]; taken {
		return true, ErrDuplicateTimestamp
	}
	delete(d.byTimestamp, e.Timestamp)
	e.Timestamp = timestamp
	d.byTimestamp[timestamp] = e
	heap.Fix(&d.order, e.index)
	return true, nil
}

// Peek returns the earliest event without removing it.
func (d *DualIndex[T]) Peek() (Event[T], bool) {
	e, ok := d.order.peek()
	if !ok {
		return Event[T]{}, false
	}
	return e.Event, true
}

// Earliest is the earliest scheduled timestamp, clock.Never when empty.
func (d *DualIndex[T]) Earliest() clock.Timestamp {
	return d.order.earliest()
}

// PopExpired removes every event with a timestamp <= now and returns them in
// ascending timestamp order.
func (d *DualIndex[T]) PopExpired(now clock.Timestamp) []Event[T] {
	var expired []Event[T]
	for len(d.order) > 0 && d.order[0].Timestamp <= now {
		e := heap.Pop(&d.order).(*entry[T])
		delete(d.byTimestamp, e.Timestamp)
		delete(d.byValue, e.Value)
		expired = append(expired, e.Event)
	}
	return expired
}

func (d *DualIndex[T]) TimestampOf(value T) (clock.Timestamp, bool) {
	if e, ok := d.byValue[value]; ok {
		return e.Timestamp, true
	}
	return 0, false
}

func (d *DualIndex[T]) ValueAt(timestamp clock.Timestamp) (T, bool) {
	if e, ok := d.byTimestamp[timestamp]; ok {
		return e.Value, true
	}
	var zero T
	return zero, false
}

func (d *DualIndex[T]) remove(e *entry[T]) {
	heap.Remove(&d.order, e.index)
	delete(d.byTimestamp, e.Timestamp)
	delete(d.byValue, e.Value)
}
