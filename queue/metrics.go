package queue

import (
	"github.com/uber-go/tally/v4"
)

type queueMetrics struct {
	scheduled  tally.Counter
	removed    tally.Counter
	updated    tally.Counter
	rejected   tally.Counter
	dispatched tally.Counter
	dropped    tally.Counter
	panics     tally.Counter
	pending    tally.Gauge
	//how late a handler started relative to its timestamp
	lateness tally.Timer
	//handler run time
	latency tally.Timer
}

func newQueueMetrics(scope tally.Scope) *queueMetrics {
	return &queueMetrics{
		scheduled:  scope.Counter("scheduled"),
		removed:    scope.Counter("removed"),
		updated:    scope.Counter("updated"),
		rejected:   scope.Counter("rejected"),
		dispatched: scope.Counter("dispatched"),
		dropped:    scope.Counter("dropped"),
		panics:     scope.Counter("panics"),
		pending:    scope.Gauge("pending"),
		lateness:   scope.Timer("dispatch_lateness"),
		latency:    scope.Timer("callback_latency"),
	}
}
