package common

import (
	"sync"
	"sync/atomic"
	"time"
)

// latencyWindowSize is the number of samples in the moving average.
const latencyWindowSize = 10

// Stats holds telemetry for dashboard recomputes: atomic counters plus a
// moving-average latency window per output.
type Stats struct {
	Recomputes atomic.Uint64 // Callbacks run
	Failures   atomic.Uint64 // Callbacks that returned an error
	startTime  time.Time

	mu      sync.Mutex
	outputs map[string]*latencyWindow
}

type latencyWindow struct {
	count   uint64
	samples [latencyWindowSize]time.Duration
	index   int
	filled  int
	last    time.Duration
}

// OutputStats is a point-in-time view of one output's counters.
type OutputStats struct {
	Count       uint64  `json:"count"`
	LastMillis  float64 `json:"last_ms"`
	AvgMillis   float64 `json:"avg_ms"`
	WindowCount int     `json:"window"`
}

// Snapshot is a point-in-time view of all counters.
type Snapshot struct {
	Recomputes uint64                 `json:"recomputes"`
	Failures   uint64                 `json:"failures"`
	Uptime     string                 `json:"uptime"`
	Outputs    map[string]OutputStats `json:"outputs"`
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{
		startTime: time.Now(),
		outputs:   make(map[string]*latencyWindow),
	}
}

// Observe records one recompute of output that took d.
func (s *Stats) Observe(output string, d time.Duration, err error) {
	s.Recomputes.Add(1)
	if err != nil {
		s.Failures.Add(1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.outputs[output]
	if !ok {
		w = &latencyWindow{}
		s.outputs[output] = w
	}
	w.count++
	w.last = d
	w.samples[w.index] = d
	w.index = (w.index + 1) % latencyWindowSize
	if w.filled < latencyWindowSize {
		w.filled++
	}
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Recomputes: s.Recomputes.Load(),
		Failures:   s.Failures.Load(),
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Outputs:    make(map[string]OutputStats),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, w := range s.outputs {
		var sum time.Duration
		for i := 0; i < w.filled; i++ {
			sum += w.samples[i]
		}
		avg := 0.0
		if w.filled > 0 {
			avg = float64(sum) / float64(w.filled) / float64(time.Millisecond)
		}
		snap.Outputs[name] = OutputStats{
			Count:       w.count,
			LastMillis:  float64(w.last) / float64(time.Millisecond),
			AvgMillis:   avg,
			WindowCount: w.filled,
		}
	}
	return snap
}

// Reset clears all counters (useful for testing or restarting).
func (s *Stats) Reset() {
	s.Recomputes.Store(0)
	s.Failures.Store(0)

	s.mu.Lock()
	s.outputs = make(map[string]*latencyWindow)
	s.startTime = time.Now()
	s.mu.Unlock()
}
