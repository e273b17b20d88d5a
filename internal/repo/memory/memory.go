package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/conncheck/internal/domain"
	"github.com/hamed0406/conncheck/internal/repo"
)

var (
	_ repo.Recorder  = (*Store)(nil)
	_ repo.Analytics = (*Store)(nil)
)

// Store is the in-memory, append-only check log of one running session.
type Store struct {
	mu      sync.RWMutex
	records []domain.CheckRecord
}

func New() *Store {
	return &Store{records: make([]domain.CheckRecord, 0, 128)}
}

func (m *Store) Record(r domain.CheckRecord) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
}

// Records returns a copy of the log in insertion order.
func (m *Store) Records() []domain.CheckRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CheckRecord, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Store) Total() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// SuccessRate is the percentage of Success checks, 0 when empty.
func (m *Store) SuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return successRate(m.records)
}

func (m *Store) CountByKind() map[domain.TargetKind]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countBy(m.records, func(r domain.CheckRecord) (domain.TargetKind, bool) { return r.Kind, true })
}

func (m *Store) CountBySeverity() map[domain.Severity]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countBy(m.records, func(r domain.CheckRecord) (domain.Severity, bool) { return r.Severity, true })
}

// CountByCategory skips records without an error category.
func (m *Store) CountByCategory() map[domain.Category]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countByCategory(m.records)
}

// MeanResponseTime is in seconds, 0 when empty.
func (m *Store) MeanResponseTime() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return meanResponseTime(m.records)
}

func (m *Store) Summary() repo.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return repo.Summary{
		Total:            len(m.records),
		SuccessRate:      successRate(m.records),
		MeanResponseTime: meanResponseTime(m.records),
		ByKind:           countBy(m.records, func(r domain.CheckRecord) (domain.TargetKind, bool) { return r.Kind, true }),
		BySeverity:       countBy(m.records, func(r domain.CheckRecord) (domain.Severity, bool) { return r.Severity, true }),
		ByCategory:       countByCategory(m.records),
	}
}

// Timeline groups records into buckets of the given width (an hour when
// bucket <= 0), oldest first. Empty buckets are omitted.
func (m *Store) Timeline(bucket time.Duration) []repo.TimelineBucket {
	if bucket <= 0 {
		bucket = time.Hour
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []repo.TimelineBucket
	index := make(map[time.Time]int)
	for _, r := range m.records {
		start := r.Timestamp.Truncate(bucket)
		i, ok := index[start]
		if !ok {
			i = len(out)
			index[start] = i
			out = append(out, repo.TimelineBucket{Start: start, Counts: make(map[domain.Severity]int)})
		}
		out[i].Counts[r.Severity]++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func successRate(rs []domain.CheckRecord) float64 {
	if len(rs) == 0 {
		return 0
	}
	ok := 0
	for _, r := range rs {
		if r.Severity == domain.SeveritySuccess {
			ok++
		}
	}
	return float64(ok) / float64(len(rs)) * 100
}

func meanResponseTime(rs []domain.CheckRecord) float64 {
	if len(rs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rs {
		sum += r.ResponseTime
	}
	return sum / float64(len(rs))
}

func countByCategory(rs []domain.CheckRecord) map[domain.Category]int {
	return countBy(rs, func(r domain.CheckRecord) (domain.Category, bool) {
		if r.ErrorCategory == nil || *r.ErrorCategory == domain.CategoryNone {
			return "", false
		}
		return *r.ErrorCategory, true
	})
}

func countBy[K comparable](rs []domain.CheckRecord, key func(domain.CheckRecord) (K, bool)) map[K]int {
	out := make(map[K]int)
	for _, r := range rs {
		if k, ok := key(r); ok {
			out[k]++
		}
	}
	return out
}
