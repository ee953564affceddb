package pomodoro

import "time"

// Timer is a pending single-shot callback.
type Timer interface {
	// Stop cancels the callback. It reports false if it already ran.
	Stop() bool
}

// Scheduler arms single-shot callbacks.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
}

// RealScheduler runs callbacks on time.AfterFunc goroutines.
type RealScheduler struct{}

func (RealScheduler) After(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
