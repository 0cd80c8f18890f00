package retry

import (
	"maps"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
)

var (
	errorsDesc = prometheus.NewDesc(
		"meetdigest_errors_total",
		"Classified failures seen by the retry engine.",
		[]string{"type", "category"}, nil,
	)
	recoveredDesc = prometheus.NewDesc(
		"meetdigest_retry_recovered_total",
		"Operations that succeeded after at least one retry.",
		nil, nil,
	)
	exhaustedDesc = prometheus.NewDesc(
		"meetdigest_retry_exhausted_total",
		"Operations that failed with a retryable error after the last retry.",
		nil, nil,
	)
)

// Stats aggregates retry outcomes. It is owned by an Engine, safe for
// concurrent use, and doubles as a prometheus.Collector.
//
// Snapshot reports the window since the last Reset. The exported metrics are
// lifetime totals that Reset leaves alone, so they stay monotonic counters.
type Stats struct {
	mu       sync.Mutex
	window   tally
	lifetime tally
}

type tally struct {
	byType     map[apperror.Type]int
	byCategory map[apperror.Category]int
	recovered  int
	exhausted  int
}

func newTally() tally {
	return tally{
		byType:     make(map[apperror.Type]int),
		byCategory: make(map[apperror.Category]int),
	}
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	ErrorsByType      map[apperror.Type]int
	ErrorsByCategory  map[apperror.Category]int
	SuccessfulRetries int
	Exhausted         int
}

func NewStats() *Stats {
	return &Stats{window: newTally(), lifetime: newTally()}
}

// Reset starts a new Snapshot window. Exported metrics are not affected.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = newTally()
}

func (s *Stats) recordError(err *apperror.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range []*tally{&s.window, &s.lifetime} {
		t.byType[err.Type()]++
		t.byCategory[err.Category()]++
	}
}

func (s *Stats) recordRecovered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.recovered++
	s.lifetime.recovered++
}

func (s *Stats) recordExhausted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.exhausted++
	s.lifetime.exhausted++
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.snapshot()
}

func (t tally) snapshot() Snapshot {
	return Snapshot{
		ErrorsByType:      maps.Clone(t.byType),
		ErrorsByCategory:  maps.Clone(t.byCategory),
		SuccessfulRetries: t.recovered,
		Exhausted:         t.exhausted,
	}
}

func (s *Stats) Describe(ch chan<- *prometheus.Desc) {
	ch <- errorsDesc
	ch <- recoveredDesc
	ch <- exhaustedDesc
}

func (s *Stats) Collect(ch chan<- prometheus.Metric) {
	s.mu.Lock()
	snap := s.lifetime.snapshot()
	s.mu.Unlock()

	for t, n := range snap.ErrorsByType {
		ch <- prometheus.MustNewConstMetric(errorsDesc, prometheus.CounterValue, float64(n), string(t), string(t.Category()))
	}
	ch <- prometheus.MustNewConstMetric(recoveredDesc, prometheus.CounterValue, float64(snap.SuccessfulRetries))
	ch <- prometheus.MustNewConstMetric(exhaustedDesc, prometheus.CounterValue, float64(snap.Exhausted))
}
