package memory

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/hamed0406/conncheck/internal/domain"
)

func cat(c domain.Category) *domain.Category { return &c }

func TestMemoryStore_EmptyAggregates(t *testing.T) {
	s := New()
	if s.Total() != 0 {
		t.Fatalf("expected 0 records, got %d", s.Total())
	}
	if s.SuccessRate() != 0.0 {
		t.Fatalf("expected success rate 0, got %v", s.SuccessRate())
	}
	if s.MeanResponseTime() != 0.0 {
		t.Fatalf("expected mean response time 0, got %v", s.MeanResponseTime())
	}
	if len(s.Timeline(time.Hour)) != 0 {
		t.Fatalf("expected empty timeline")
	}
}

func TestMemoryStore_RecordAndAggregate(t *testing.T) {
	s := New()
	s.Record(domain.CheckRecord{Kind: domain.KindURL, Target: "https://example.com", Severity: domain.SeveritySuccess, ResponseTime: 0.1})
	s.Record(domain.CheckRecord{Kind: domain.KindURL, Target: "https://example.com/x", Severity: domain.SeverityError, ResponseTime: 0.3, ErrorCategory: cat(domain.CategoryHTTPStatus)})
	s.Record(domain.CheckRecord{Kind: domain.KindIP, Target: "10.0.0.1:22", Severity: domain.SeverityError, ResponseTime: 0.5, ErrorCategory: cat(domain.CategoryTimeout)})
	s.Record(domain.CheckRecord{Kind: domain.KindIP, Target: "10.0.0.1:443", Severity: domain.SeverityWarning, ResponseTime: 0.3})

	if s.Total() != 4 {
		t.Fatalf("expected 4 records, got %d", s.Total())
	}
	if got := s.SuccessRate(); got != 25.0 {
		t.Fatalf("success rate: want 25, got %v", got)
	}
	if got := s.MeanResponseTime(); math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("mean response time: want 0.3, got %v", got)
	}
	byKind := s.CountByKind()
	if byKind[domain.KindURL] != 2 || byKind[domain.KindIP] != 2 {
		t.Fatalf("by kind: %+v", byKind)
	}
	bySev := s.CountBySeverity()
	if bySev[domain.SeverityError] != 2 || bySev[domain.SeveritySuccess] != 1 || bySev[domain.SeverityWarning] != 1 {
		t.Fatalf("by severity: %+v", bySev)
	}
	byCat := s.CountByCategory()
	if len(byCat) != 2 || byCat[domain.CategoryTimeout] != 1 || byCat[domain.CategoryHTTPStatus] != 1 {
		t.Fatalf("by category should skip nil categories: %+v", byCat)
	}

	recs := s.Records()
	if recs[0].ID == "" || recs[0].Timestamp.IsZero() {
		t.Fatalf("expected ID and timestamp to be set: %+v", recs[0])
	}
	recs[0].Target = "mutated"
	if s.Records()[0].Target == "mutated" {
		t.Fatalf("Records must return a copy")
	}

	sum := s.Summary()
	if sum.Total != 4 || sum.SuccessRate != 25.0 || sum.ByKind[domain.KindIP] != 2 {
		t.Fatalf("summary mismatch: %+v", sum)
	}
}

func TestMemoryStore_Timeline(t *testing.T) {
	s := New()
	base := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	s.Record(domain.CheckRecord{Timestamp: base.Add(90 * time.Minute), Severity: domain.SeverityError})
	s.Record(domain.CheckRecord{Timestamp: base.Add(5 * time.Minute), Severity: domain.SeveritySuccess})
	s.Record(domain.CheckRecord{Timestamp: base.Add(10 * time.Minute), Severity: domain.SeveritySuccess})

	tl := s.Timeline(time.Hour)
	if len(tl) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(tl))
	}
	if !tl[0].Start.Equal(base) || tl[0].Counts[domain.SeveritySuccess] != 2 {
		t.Fatalf("first bucket wrong: %+v", tl[0])
	}
	if tl[1].Counts[domain.SeverityError] != 1 {
		t.Fatalf("second bucket wrong: %+v", tl[1])
	}
}

func TestMemoryStore_ConcurrentRecord(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Record(domain.CheckRecord{Severity: domain.SeveritySuccess})
		}()
	}
	wg.Wait()
	if s.Total() != 50 || s.SuccessRate() != 100 {
		t.Fatalf("expected 50 successful records, got %d (%v%%)", s.Total(), s.SuccessRate())
	}
}
