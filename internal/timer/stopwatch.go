package timer

import "time"

// Stopwatch counts up for open-ended study sessions.
type Stopwatch struct {
	clock     Clock
	startedAt time.Time
	elapsed   time.Duration
	running   bool
}

// NewStopwatch returns a stopped stopwatch at zero.
func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock
	}
	return &Stopwatch{clock: clock}
}

// Start resumes counting; it is a no-op when already running.
func (s *Stopwatch) Start() {
	if s.running {
		return
	}
	s.startedAt = s.clock.Now()
	s.running = true
}

// Pause stops counting and keeps the accumulated time.
func (s *Stopwatch) Pause() {
	if !s.running {
		return
	}
	s.elapsed += s.clock.Now().Sub(s.startedAt)
	s.running = false
}

// Toggle starts a paused stopwatch or pauses a running one.
func (s *Stopwatch) Toggle() {
	if s.running {
		s.Pause()
		return
	}
	s.Start()
}

// Reset stops the stopwatch and returns the time it had accumulated.
func (s *Stopwatch) Reset() time.Duration {
	total := s.Elapsed()
	s.elapsed = 0
	s.running = false
	s.startedAt = time.Time{}
	return total
}

// Running reports whether the stopwatch is counting.
func (s *Stopwatch) Running() bool { return s.running }

// Elapsed returns the accumulated time including the running stretch.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.running {
		return s.elapsed + s.clock.Now().Sub(s.startedAt)
	}
	return s.elapsed
}
