// Package clock provides the monotonic timestamps events are keyed by.
//
// A Timestamp counts nanoseconds since a process-local epoch captured when the
// package is initialized. It is derived from Go's monotonic clock reading, so
// wall-clock adjustments (NTP steps, manual changes) never move it.
package clock

import (
	"math"
	"strconv"
	"time"
)

// Timestamp is a point on the process-local monotonic clock.
type Timestamp int64

// Never is the largest representable Timestamp.
const Never Timestamp = math.MaxInt64

var epoch = time.Now()

// Now returns the current monotonic timestamp.
func Now() Timestamp {
	return Timestamp(time.Since(epoch))
}

// After returns the timestamp d from now.
func After(d time.Duration) Timestamp {
	return Now().Add(d)
}

// Add returns t+d, saturating instead of wrapping around.
func (t Timestamp) Add(d time.Duration) Timestamp {
	sum := t + Timestamp(d)
	switch {
	case d > 0 && sum < t:
		return Never
	case d < 0 && sum > t:
		return math.MinInt64
	}
	return sum
}

func (t Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration(t - u)
}

func (t Timestamp) Before(u Timestamp) bool {
	return t < u
}

func (t Timestamp) After(u Timestamp) bool {
	return t > u
}

// Until returns the duration until t, negative once t has elapsed.
func (t Timestamp) Until() time.Duration {
	return t.Sub(Now())
}

// Elapsed is the offset of t from the process epoch.
func (t Timestamp) Elapsed() time.Duration {
	return time.Duration(t)
}

func (t Timestamp) String() string {
	if t == Never {
		return "never"
	}
	return "+" + strconv.FormatFloat(t.Elapsed().Seconds(), 'f', 6, 64) + "s"
}
