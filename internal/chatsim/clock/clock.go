// Package clock abstracts wall time and timers so delayed work can be driven
// deterministically in tests.
package clock

import "time"

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or was stopped.
	Stop() bool
}

// Clock provides the current time and delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the production clock backed by the time package.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// DisplayTime formats t the way message and session timestamps are shown.
func DisplayTime(t time.Time) string {
	return t.Format("15:04")
}
