package listview

import (
	"sync"
	"time"
)

// DefaultQuiet is how long a table waits after the last change before fetching.
const DefaultQuiet = 100 * time.Millisecond

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc starts a timer that calls f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// SystemAfterFunc is AfterFunc backed by time.AfterFunc.
func SystemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler runs the most recently scheduled function once the quiet period
// passes without another Schedule call.
type Scheduler struct {
	mu      sync.Mutex
	quiet   time.Duration
	after   AfterFunc
	timer   Timer
	gen     uint64
	stopped bool
}

// NewScheduler builds a Scheduler. A nil after uses SystemAfterFunc.
func NewScheduler(quiet time.Duration, after AfterFunc) *Scheduler {
	if after == nil {
		after = SystemAfterFunc
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Scheduler{quiet: quiet, after: after}
}

// Schedule cancels the pending run, if any, and arms a new one.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.after(s.quiet, func() {
		s.mu.Lock()
		// A timer that lost the race with Stop still fires; the generation tells.
		if s.stopped || s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending run. It reports whether one was pending.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	return true
}

// Pending reports whether a run is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Stop cancels the pending run and refuses further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}
