package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// EntryKind tells requests, slot queries and tracker commands apart.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
	KindCommand
)

// String returns the label used in logs and metrics.
func (k EntryKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindQuery:
		return "query"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Entry is a single timing sample.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /", "QueryRowContext" or a command name
	StatusCode int    // HTTP status, 0 otherwise
	DurationMs float64
	Timestamp  time.Time
}

// Collector keeps the most recent timing samples in a fixed ring.
// Once full, each Record overwrites the oldest sample. Aggregation is done on read.
type Collector struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	total   int64 // samples ever recorded, read atomically
	metrics *Metrics
}

// NewCollector creates a collector holding up to size samples.
// PRE: size > 0 (non-positive sizes fall back to DefaultRingSize)
// POST: Returns an empty collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// WithMetrics forwards every recorded sample to m as well.
func (c *Collector) WithMetrics(m *Metrics) *Collector {
	c.metrics = m
	return c
}

// Record stores a sample.
// PRE: e.Timestamp is set
// POST: Sample stored; oldest sample dropped when full
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	atomic.AddInt64(&c.total, 1)
	if c.metrics != nil {
		c.metrics.observe(e)
	}
}

// RecordCommand stores a tracker command sample and counts its outcome.
func (c *Collector) RecordCommand(name, outcome string, d time.Duration) {
	c.Record(Entry{
		Kind:       KindCommand,
		Path:       name,
		DurationMs: float64(d.Microseconds()) / 1000,
		Timestamp:  time.Now(),
	})
	if c.metrics != nil {
		c.metrics.CountCommand(name, outcome)
	}
}

// TotalRecorded returns how many samples were ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.total)
}

// Snapshot is the aggregated view served by /api/perf.
type Snapshot struct {
	TotalSamples    int64      `json:"total_samples"`
	RequestP50Ms    float64    `json:"request_p50_ms"`
	RequestP95Ms    float64    `json:"request_p95_ms"`
	RequestP99Ms    float64    `json:"request_p99_ms"`
	SlowestPaths    []PathStat `json:"slowest_paths"`
	SlowestQueries  []PathStat `json:"slowest_queries"`
	SlowestCommands []PathStat `json:"slowest_commands"`
}

// PathStat aggregates the samples sharing one Path.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"total_ms"`
}

// Snapshot aggregates samples taken at or after since, keeping the topN slowest per kind.
// PRE: topN > 0
// POST: Returns percentiles over requests and per-kind top lists
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	samples := make([]Entry, len(c.ring))
	copy(samples, c.ring)
	c.mu.Unlock()

	var durations []float64
	byKind := map[EntryKind]map[string]*PathStat{
		KindRequest: {},
		KindQuery:   {},
		KindCommand: {},
	}
	for _, e := range samples {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		stats, ok := byKind[e.Kind]
		if !ok {
			continue
		}
		if e.Kind == KindRequest {
			durations = append(durations, e.DurationMs)
		}
		s, ok := stats[e.Path]
		if !ok {
			s = &PathStat{Path: e.Path}
			stats[e.Path] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
	}

	snap := Snapshot{
		TotalSamples:    c.TotalRecorded(),
		SlowestPaths:    slowest(byKind[KindRequest], topN),
		SlowestQueries:  slowest(byKind[KindQuery], topN),
		SlowestCommands: slowest(byKind[KindCommand], topN),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of an ascending slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(pos)), int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// slowest returns up to n stats ordered by average duration, slowest first.
func slowest(stats map[string]*PathStat, n int) []PathStat {
	out := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs == out[j].AvgMs {
			return out[i].Path < out[j].Path
		}
		return out[i].AvgMs > out[j].AvgMs
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
