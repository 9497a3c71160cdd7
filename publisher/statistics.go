package publisher

import "sync/atomic"

// Statistics tracks source activity with atomic counters. Tracking is always
// on; Prometheus export is layered on top via WithMetrics and never replaces
// these counters.
type Statistics struct {
	subscriptions atomic.Int64
	active        atomic.Int64
	emitted       atomic.Int64
	requests      atomic.Int64
	completed     atomic.Int64
	errored       atomic.Int64
	cancelled     atomic.Int64
}

func (s *Statistics) recordSubscription() {
	s.subscriptions.Add(1)
	s.active.Add(1)
}

func (s *Statistics) recordEmitted(n int64) {
	if n > 0 {
		s.emitted.Add(n)
	}
}

func (s *Statistics) recordRequest() {
	s.requests.Add(1)
}

func (s *Statistics) recordCompleted() {
	s.completed.Add(1)
	s.active.Add(-1)
}

func (s *Statistics) recordErrored() {
	s.errored.Add(1)
	s.active.Add(-1)
}

func (s *Statistics) recordCancelled() {
	s.cancelled.Add(1)
	s.active.Add(-1)
}

// Subscriptions returns the total number of accepted subscriptions.
func (s *Statistics) Subscriptions() int64 { return s.subscriptions.Load() }

// Active returns the number of subscriptions between OnSubscribe and a
// terminal signal or cancellation.
func (s *Statistics) Active() int64 { return s.active.Load() }

// Emitted returns the total number of delivered elements.
func (s *Statistics) Emitted() int64 { return s.emitted.Load() }

// Requests returns the total number of Request calls received.
func (s *Statistics) Requests() int64 { return s.requests.Load() }

// Completed returns the number of subscriptions that ended with OnComplete.
func (s *Statistics) Completed() int64 { return s.completed.Load() }

// Errored returns the number of subscriptions that ended with OnError.
func (s *Statistics) Errored() int64 { return s.errored.Load() }

// Cancelled returns the number of subscriptions ended by Cancel.
func (s *Statistics) Cancelled() int64 { return s.cancelled.Load() }

// SourceStats is a point-in-time snapshot of source activity.
type SourceStats struct {
	Subscriptions int64 `json:"subscriptions"`
	Active        int64 `json:"active"`
	Emitted       int64 `json:"emitted"`
	Requests      int64 `json:"requests"`
	Completed     int64 `json:"completed"`
	Errored       int64 `json:"errored"`
	Cancelled     int64 `json:"cancelled"`
}

// Snapshot returns a consistent-enough view for monitoring. Individual
// counters are read atomically; the set as a whole is not a transaction.
func (s *Statistics) Snapshot() SourceStats {
	return SourceStats{
		Subscriptions: s.subscriptions.Load(),
		Active:        s.active.Load(),
		Emitted:       s.emitted.Load(),
		Requests:      s.requests.Load(),
		Completed:     s.completed.Load(),
		Errored:       s.errored.Load(),
		Cancelled:     s.cancelled.Load(),
	}
}
