package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hamed0406/conncheck/internal/domain"
)

func TestRecorder_CountsAndServes(t *testing.T) {
	r := New()
	timeout := domain.CategoryTimeout
	r.Record(domain.CheckRecord{Kind: domain.KindURL, Severity: domain.SeveritySuccess, ResponseTime: 0.2})
	r.Record(domain.CheckRecord{Kind: domain.KindIP, Severity: domain.SeverityError, ResponseTime: 3, ErrorCategory: &timeout})
	r.Record(domain.CheckRecord{Kind: domain.KindIP, Severity: domain.SeverityError, ResponseTime: 3, ErrorCategory: &timeout})

	if got := testutil.ToFloat64(r.checks.WithLabelValues("url", "Success", "")); got != 1 {
		t.Fatalf("url success count: want 1, got %v", got)
	}
	if got := testutil.ToFloat64(r.checks.WithLabelValues("ip", "Error", "timeout")); got != 2 {
		t.Fatalf("ip timeout count: want 2, got %v", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "conncheck_check_duration_seconds") {
		t.Fatalf("histogram missing from exposition:\n%s", body)
	}
}
