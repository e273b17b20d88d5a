package repo_test

import (
	"testing"

	"github.com/hamed0406/conncheck/internal/domain"
	"github.com/hamed0406/conncheck/internal/repo"
	"github.com/hamed0406/conncheck/internal/repo/memory"
)

type countingRecorder struct{ n int }

func (c *countingRecorder) Record(domain.CheckRecord) { c.n++ }

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	a, b := &countingRecorder{}, memory.New()
	m := repo.Multi{a, nil, b}
	m.Record(domain.CheckRecord{Severity: domain.SeverityError})
	m.Record(domain.CheckRecord{Severity: domain.SeveritySuccess})

	if a.n != 2 || b.Total() != 2 {
		t.Fatalf("expected both recorders to see 2 records, got %d and %d", a.n, b.Total())
	}
}

// Compile-time interface satisfaction checks.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.Recorder = memory.New()
	var _ repo.Analytics = memory.New()
	var _ repo.Recorder = repo.Multi{}
}
