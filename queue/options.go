package queue

import (
	"time"

	"github.com/RuiFG/timedqueue/log"
	"github.com/uber-go/tally/v4"
)

// DispatchMode decides whether expire handlers run with the queue locked.
type DispatchMode int

const (
	// LockedDispatch runs the handler while holding the queue lock. The handler
	// sees a store nobody else can mutate, but a slow handler stalls every
	// Add/Remove/Update caller and any call back into the queue deadlocks.
	LockedDispatch DispatchMode = iota
	// DetachedDispatch pops the due batch under the lock and runs the handlers
	// after releasing it. Handlers may call Add, Remove and Update; calling Stop
	// from a handler still deadlocks.
	DetachedDispatch
)

func (m DispatchMode) String() string {
	switch m {
	case LockedDispatch:
		return "locked"
	case DetachedDispatch:
		return "detached"
	}
	return "unknown"
}

// DefaultMaxSleep bounds a single wait of the worker.
const DefaultMaxSleep = 60 * time.Second

type Options struct {
	Name         string
	Logger       log.Logger
	Scope        tally.Scope
	MaxSleep     time.Duration
	DispatchMode DispatchMode
}

type Option func(*Options)

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

func WithLogger(logger log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics reports queue metrics to scope.
func WithMetrics(scope tally.Scope) Option {
	return func(o *Options) {
		o.Scope = scope
	}
}

// WithMaxSleep caps how long the worker waits before re-evaluating its
// deadline, 0 disables the cap.
func WithMaxSleep(d time.Duration) Option {
	return func(o *Options) {
		o.MaxSleep = d
	}
}

func WithDispatchMode(mode DispatchMode) Option {
	return func(o *Options) {
		o.DispatchMode = mode
	}
}

func defaultOptions() Options {
	return Options{
		Name:         "timed-event-queue",
		MaxSleep:     DefaultMaxSleep,
		DispatchMode: LockedDispatch,
	}
}
