package core

// debounce.go delays evaluation of a rapidly changing input until it has been
// quiet for a fixed period.
//
// The timer itself is hidden behind Scheduler so the engine never depends on a
// particular event loop. Production code uses time.AfterFunc; tests use a
// manual clock and advance it explicitly.

import "time"

// DefaultDebounceDelay is the quiet period before a typed query is evaluated.
const DefaultDebounceDelay = 300 * time.Millisecond

// Scheduler runs fn once after d. The returned cancel func prevents fn from
// running if it has not started yet; calling it more than once is harmless.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// SchedulerFunc adapts a plain function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, fn func()) func()

// Schedule calls f(d, fn).
func (f SchedulerFunc) Schedule(d time.Duration, fn func()) func() {
	return f(d, fn)
}

// TimerScheduler schedules with time.AfterFunc. The callback runs on its own
// goroutine, so owners that are not goroutine-safe must wrap it.
var TimerScheduler Scheduler = SchedulerFunc(func(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
})

// Debouncer keeps at most one pending call. Each Trigger replaces the pending
// call, so only the value from the last Trigger within the delay is delivered.
type Debouncer[T any] struct {
	delay     time.Duration
	scheduler Scheduler
	fire      func(T)

	cancel  func()
	pending bool
	value   T
	gen     uint64
}

// NewDebouncer creates a debouncer that calls fire with the last triggered
// value once delay has passed without another Trigger.
func NewDebouncer[T any](delay time.Duration, scheduler Scheduler, fire func(T)) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	if scheduler == nil {
		scheduler = TimerScheduler
	}
	return &Debouncer[T]{
		delay:     delay,
		scheduler: scheduler,
		fire:      fire,
	}
}

// Trigger records v and reschedules the pending evaluation.
func (d *Debouncer[T]) Trigger(v T) {
	d.stop()
	d.value = v
	d.pending = true
	d.gen++

	gen := d.gen
	d.cancel = d.scheduler.Schedule(d.delay, func() {
		// A cancel that lost the race with an already-running timer must not
		// deliver a stale value.
		if gen != d.gen {
			return
		}
		d.Flush()
	})
}

// Flush delivers the pending value now, if any. It reports whether a value
// was delivered.
func (d *Debouncer[T]) Flush() bool {
	if !d.pending {
		return false
	}
	d.stop()
	v := d.value
	d.pending = false
	var zero T
	d.value = zero
	d.fire(v)
	return true
}

// Cancel drops the pending value without delivering it.
func (d *Debouncer[T]) Cancel() {
	d.stop()
	d.pending = false
	d.gen++
}

// Pending reports whether an evaluation is scheduled.
func (d *Debouncer[T]) Pending() bool {
	return d.pending
}

func (d *Debouncer[T]) stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
