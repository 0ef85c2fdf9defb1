package index

import (
	"github.com/RuiFG/timedqueue/clock"
)

// entry is shared by both directions of the index, so a timestamp and its
// value can never point at different records.
type entry[T comparable] struct {
	Event[T]
	//position in eventHeap, -1 once removed
	index int
}

// eventHeap orders entries from the earliest to the latest Timestamp.
// If timestamps are inserted in this order
// +---+     +---+     +---+     +---+     +---+
// | 2 | --> | 5 | --> | 3 | --> | 1 | --> | 7 |
// +---+     +---+     +---+     +---+     +---+
// the root is always the smallest:
// +---+     +---+     +---+     +---+     +---+
// | 1 | --> | 2 | --> | 3 | --> | 5 | --> | 7 |
// +---+     +---+     +---+     +---+     +---+
type eventHeap[T comparable] []*entry[T]

//---------------------------------------------------------------------------------
//Warning: Do not call directly, expose the function only for the heap package to use
//---------------------------------------------------------------------------------

func (h eventHeap[T]) Len() int {
	return len(h)
}

func (h eventHeap[T]) Less(i, j int) bool {
	return h[i].Timestamp < h[j].Timestamp
}

func (h eventHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap[T]) Push(x any) {
	e := x.(*entry[T])
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

//---------------------------------------------------------------------------------

func (h eventHeap[T]) peek() (*entry[T], bool) {
	if len(h) == 0 {
		return nil, false
	}
	return h[0], true
}

func (h eventHeap[T]) earliest() clock.Timestamp {
	if len(h) == 0 {
		return clock.Never
	}
	return h[0].Timestamp
}
