package engine

import "time"

// Scheduler defers a single function call. Implementations run fn at most
// once; the returned cancel function stops a pending run and is safe to call
// after fn has fired.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules on real time
type TimerScheduler struct{}

func (TimerScheduler) Schedule(delay time.Duration, fn func()) func() {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}

// noopScheduler drops every scheduled call. Used when a session is driven
// without deferred transitions, e.g. read-only rehydration.
type noopScheduler struct{}

func (noopScheduler) Schedule(time.Duration, func()) func() {
	return func() {}
}
