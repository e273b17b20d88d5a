package repo

import (
	"time"

	"github.com/hamed0406/conncheck/internal/domain"
)

// Recorder receives one CheckRecord per completed check. Implementations
// must not block on I/O and cannot fail.
type Recorder interface {
	Record(r domain.CheckRecord)
}

// Analytics are read-only views over recorded checks.
type Analytics interface {
	Records() []domain.CheckRecord
	Summary() Summary
	Timeline(bucket time.Duration) []TimelineBucket
}

type Summary struct {
	Total            int                       `json:"total_checks"`
	SuccessRate      float64                   `json:"success_rate"`
	MeanResponseTime float64                   `json:"average_response_time"`
	ByKind           map[domain.TargetKind]int `json:"checks_by_type"`
	BySeverity       map[domain.Severity]int   `json:"checks_by_status"`
	ByCategory       map[domain.Category]int   `json:"error_types"`
}

// TimelineBucket counts checks per severity starting at Start.
type TimelineBucket struct {
	Start  time.Time               `json:"start"`
	Counts map[domain.Severity]int `json:"counts"`
}

// Multi fans a record out to every non-nil recorder.
type Multi []Recorder

func (m Multi) Record(r domain.CheckRecord) {
	for _, rec := range m {
		if rec == nil {
			continue
		}
		rec.Record(r)
	}
}
