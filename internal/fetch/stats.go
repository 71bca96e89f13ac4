package fetch

import (
	"cmp"
	"slices"
	"strconv"
	"sync"
	"time"
)

// Outcome classifies a finished fetch.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeStatus Outcome = "status" // answered, but not 2xx
	OutcomeError  Outcome = "error"  // no answer at all
)

// maxFailingRefs caps the failing refs listed in a snapshot.
const maxFailingRefs = 10

type fetchSample struct {
	at      time.Time
	ref     string
	took    time.Duration
	status  int
	outcome Outcome
}

// Latency summarizes fetch durations in milliseconds.
type Latency struct {
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// RefFailures counts the misses of one ref. Manifest candidates that are
// skipped on the way to a fallback show up here as 404s.
type RefFailures struct {
	Ref        string `json:"ref"`
	Failures   int    `json:"failures"`
	LastStatus int    `json:"last_status,omitempty"`
}

// StatsSnapshot describes the fetches of the current window.
type StatsSnapshot struct {
	Window      string         `json:"window"`
	Fetches     int            `json:"fetches"`
	OK          int            `json:"ok"`
	NonSuccess  int            `json:"non_success"`
	Errors      int            `json:"errors"`
	Statuses    map[string]int `json:"statuses"`
	Latency     Latency        `json:"latency"`
	FailingRefs []RefFailures  `json:"failing_refs"`
}

// Stats keeps the fetches of a rolling window.
type Stats struct {
	mu      sync.Mutex
	window  time.Duration
	samples []fetchSample
	now     func() time.Time
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, now: time.Now}
}

// Record adds one fetch of ref. resp may be nil when err is set.
func (s *Stats) Record(ref string, took time.Duration, resp *Response, err error) {
	fs := fetchSample{ref: ref, took: max(took, 0)}
	switch {
	case err != nil || resp == nil:
		fs.outcome = OutcomeError
	case resp.OK():
		fs.outcome, fs.status = OutcomeOK, resp.Status
	default:
		fs.outcome, fs.status = OutcomeStatus, resp.Status
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fs.at = s.now()
	s.expire(fs.at)
	s.samples = append(s.samples, fs)
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expire(s.now())
	samples := slices.Clone(s.samples)
	s.mu.Unlock()

	snap := StatsSnapshot{
		Window:      s.window.String(),
		Fetches:     len(samples),
		Statuses:    make(map[string]int),
		FailingRefs: []RefFailures{},
	}
	if len(samples) == 0 {
		return snap
	}

	durations := make([]time.Duration, 0, len(samples))
	failing := make(map[string]*RefFailures)
	var total time.Duration
	for _, fs := range samples {
		durations = append(durations, fs.took)
		total += fs.took

		switch fs.outcome {
		case OutcomeOK:
			snap.OK++
		case OutcomeStatus:
			snap.NonSuccess++
		case OutcomeError:
			snap.Errors++
		}
		if fs.status != 0 {
			snap.Statuses[strconv.Itoa(fs.status)]++
		}
		if fs.outcome != OutcomeOK {
			rf := failing[fs.ref]
			if rf == nil {
				rf = &RefFailures{Ref: fs.ref}
				failing[fs.ref] = rf
			}
			rf.Failures++
			rf.LastStatus = fs.status
		}
	}

	slices.Sort(durations)
	snap.Latency = Latency{
		MinMs: ms(durations[0]),
		MaxMs: ms(durations[len(durations)-1]),
		AvgMs: ms(total / time.Duration(len(durations))),
		P50Ms: ms(nearestRank(durations, 50)),
		P95Ms: ms(nearestRank(durations, 95)),
	}

	for _, rf := range failing {
		snap.FailingRefs = append(snap.FailingRefs, *rf)
	}
	slices.SortFunc(snap.FailingRefs, func(a, b RefFailures) int {
		if c := cmp.Compare(b.Failures, a.Failures); c != 0 {
			return c
		}
		return cmp.Compare(a.Ref, b.Ref)
	})
	if len(snap.FailingRefs) > maxFailingRefs {
		snap.FailingRefs = snap.FailingRefs[:maxFailingRefs]
	}
	return snap
}

// expire drops samples older than the window. Samples are in time order.
func (s *Stats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	i, _ := slices.BinarySearchFunc(s.samples, cutoff, func(fs fetchSample, t time.Time) int {
		return fs.at.Compare(t)
	})
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

// nearestRank returns the pct-th percentile of sorted by the nearest-rank
// method.
func nearestRank(sorted []time.Duration, pct int) time.Duration {
	rank := (pct*len(sorted) + 99) / 100
	return sorted[min(max(rank, 1), len(sorted))-1]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
