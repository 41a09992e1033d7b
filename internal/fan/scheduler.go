package fan

import (
	"sync"
	"time"
)

// Frame is an armed animation tick that has not fired yet.
type Frame interface {
	// Cancel stops the tick from firing. Cancelling a fired frame is a no-op.
	Cancel()
}

// FrameScheduler arms fn to run once on the next display frame.
type FrameScheduler interface {
	Next(fn func()) Frame
}

// TimerScheduler fires frames on a fixed interval using runtime timers.
type TimerScheduler struct {
	interval time.Duration
}

// NewTimerScheduler returns a scheduler producing one frame per interval.
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TimerScheduler{interval: interval}
}

type timerFrame struct {
	t *time.Timer
}

func (f timerFrame) Cancel() { f.t.Stop() }

// Next implements FrameScheduler.
func (s *TimerScheduler) Next(fn func()) Frame {
	return timerFrame{t: time.AfterFunc(s.interval, fn)}
}

// ManualScheduler holds frames until Step is called. It drives the panel
// deterministically in tests and simulations.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualFrame
}

type manualFrame struct {
	s         *ManualScheduler
	fn        func()
	cancelled bool
}

func (f *manualFrame) Cancel() {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.cancelled = true
}

// Next implements FrameScheduler.
func (s *ManualScheduler) Next(fn func()) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &manualFrame{s: s, fn: fn}
	s.pending = append(s.pending, f)
	return f
}

// Step fires every frame armed before the call and returns how many ran.
// Frames armed by the callbacks wait for the next Step.
func (s *ManualScheduler) Step() int {
	s.mu.Lock()
	due := s.pending
	s.pending = nil
	s.mu.Unlock()

	fired := 0
	for _, f := range due {
		s.mu.Lock()
		cancelled := f.cancelled
		s.mu.Unlock()
		if cancelled {
			continue
		}
		f.fn()
		fired++
	}
	return fired
}

// Pending returns the number of armed, uncancelled frames.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.pending {
		if !f.cancelled {
			n++
		}
	}
	return n
}
