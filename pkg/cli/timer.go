package cli

import "time"

// Timer coalesces bursts of calls to Tell into one call of its function. The
// function runs minInterval after the last Tell, but no later than
// maxInterval after the first Tell of the burst.
//
// All methods must be called from the goroutine that runs posted closures;
// the function itself is always called from there.
type Timer struct {
	minInterval time.Duration
	maxInterval time.Duration
	f           func()
	post        func(func())
	now         func() time.Time

	timer   *time.Timer
	latest  time.Time
	pending bool
	gen     int
}

// NewTimer creates a Timer. The post function must arrange for its argument
// to be called on the goroutine that owns the Timer.
func NewTimer(minInterval, maxInterval time.Duration, post func(func()), f func()) *Timer {
	return &Timer{minInterval: minInterval, maxInterval: maxInterval,
		f: f, post: post, now: time.Now}
}

// Tell schedules a call of the function.
func (t *Timer) Tell() {
	now := t.now()
	if !t.pending {
		t.pending = true
		t.latest = now.Add(t.maxInterval)
	}
	delay := t.minInterval
	if d := t.latest.Sub(now); d < delay {
		delay = d
	}
	if delay < 0 {
		delay = 0
	}
	t.stop()
	gen := t.gen
	t.timer = time.AfterFunc(delay, func() {
		t.post(func() { t.fire(gen) })
	})
}

// Flush calls the function right away if a call is scheduled.
func (t *Timer) Flush() {
	if !t.pending {
		return
	}
	t.stop()
	t.pending = false
	t.f()
}

// Reset drops the scheduled call, if any.
func (t *Timer) Reset() {
	t.stop()
	t.pending = false
}

// Pending reports whether a call is scheduled.
func (t *Timer) Pending() bool { return t.pending }

func (t *Timer) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

func (t *Timer) fire(gen int) {
	if gen != t.gen || !t.pending {
		return
	}
	t.timer = nil
	t.pending = false
	t.f()
}
