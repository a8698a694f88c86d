package form

import "time"

// DefaultResetDelay is how long a submitted form shows its success state
// before returning to an empty form.
const DefaultResetDelay = 3 * time.Second

// CancelFunc stops a scheduled task. It reports whether the task was
// stopped before it ran.
type CancelFunc func() bool

// Scheduler runs a function once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

// TimerScheduler schedules on the runtime timer.
type TimerScheduler struct{}

// AfterFunc implements Scheduler with time.AfterFunc.
func (TimerScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
