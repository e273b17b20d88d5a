package checker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/conncheck/internal/domain"
	"github.com/hamed0406/conncheck/internal/probe"
	"github.com/hamed0406/conncheck/internal/repo/memory"
	"github.com/hamed0406/conncheck/internal/target"
)

// ---- test helpers ----

type fakeChecker struct {
	calls   int
	targets []string
	out     []probe.Result
}

func (f *fakeChecker) Check(_ context.Context, tgt string, _ probe.Options) probe.Result {
	f.calls++
	f.targets = append(f.targets, tgt)
	if len(f.out) == 0 {
		return probe.Result{}
	}
	r := f.out[0]
	if len(f.out) > 1 {
		f.out = f.out[1:]
	}
	return r
}

func intp(i int) *int { return &i }

// ---- tests ----

func TestCheck_InvalidInputNeverProbes(t *testing.T) {
	web, sock := &fakeChecker{}, &fakeChecker{}
	store := memory.New()
	svc := New(zap.NewNop(), WithWebChecker(web), WithSocketChecker(sock), WithRecorder(store))

	if _, err := svc.CheckWeb(context.Background(), target.Web{Scheme: "https"}, probe.DefaultOptions()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty host: want ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CheckSocket(context.Background(), target.Socket{Port: "22"}, probe.DefaultOptions()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty address: want ErrInvalidInput, got %v", err)
	}
	if web.calls != 0 || sock.calls != 0 {
		t.Fatalf("prober must not be invoked, got web=%d socket=%d", web.calls, sock.calls)
	}
	if store.Total() != 0 {
		t.Fatalf("rejected checks must not be recorded")
	}
}

func TestCheck_DispatchesAndRecords(t *testing.T) {
	web := &fakeChecker{out: []probe.Result{{Kind: domain.KindURL, StatusCode: 200, Attempts: 1}}}
	sock := &fakeChecker{out: []probe.Result{{Kind: domain.KindIP, SocketCode: intp(111), Host: "10.0.0.1", Port: "22", Attempts: 1}}}
	store := memory.New()
	svc := New(zap.NewNop(), WithWebChecker(web), WithSocketChecker(sock), WithRecorder(store))

	rep, err := svc.CheckWeb(context.Background(), target.Web{Scheme: "http", Host: "example.com", Port: "8080", Path: "/api"}, probe.DefaultOptions())
	if err != nil {
		t.Fatalf("CheckWeb: %v", err)
	}
	if web.targets[0] != "http://example.com:8080/api" || rep.Target != web.targets[0] {
		t.Fatalf("web target not built: %v / %q", web.targets, rep.Target)
	}
	if rep.Severity != domain.SeveritySuccess {
		t.Fatalf("want Success, got %+v", rep.Outcome)
	}

	rep, err = svc.CheckSocket(context.Background(), target.Socket{Address: "10.0.0.1", Port: "22"}, probe.DefaultOptions())
	if err != nil {
		t.Fatalf("CheckSocket: %v", err)
	}
	if rep.Severity != domain.SeverityError || !strings.Contains(rep.Message, "refused") {
		t.Fatalf("want refused error, got %+v", rep.Outcome)
	}

	recs := store.Records()
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}
	if recs[0].Kind != domain.KindURL || recs[0].Protocol != "http" || recs[0].Port == nil || *recs[0].Port != 8080 || recs[0].ErrorCategory != nil {
		t.Fatalf("unexpected url record: %+v", recs[0])
	}
	if recs[1].Kind != domain.KindIP || recs[1].Protocol != "tcp" || recs[1].ErrorCategory == nil || *recs[1].ErrorCategory != domain.CategoryConnectionRefused {
		t.Fatalf("unexpected ip record: %+v", recs[1])
	}
	if store.SuccessRate() != 50 {
		t.Fatalf("want 50%% success rate, got %v", store.SuccessRate())
	}
}

func TestCheck_MalformedSocketTargetIsClassified(t *testing.T) {
	store := memory.New()
	svc := New(zap.NewNop(), WithRecorder(store))

	// No port, so the probe sees a bare host and cannot parse HOST:PORT.
	rep, err := svc.CheckSocket(context.Background(), target.Socket{Address: "not-a-valid-target"}, probe.Options{Timeout: time.Second, Retries: 3})
	if err != nil {
		t.Fatalf("format errors are outcomes, not errors: %v", err)
	}
	if rep.Severity != domain.SeverityError || rep.Category != domain.CategoryInvalidFormat {
		t.Fatalf("want invalid_format error, got %+v", rep.Outcome)
	}
	if rep.Attempts != 1 {
		t.Fatalf("format errors must not be retried, got %d attempts", rep.Attempts)
	}
	if store.Total() != 1 {
		t.Fatalf("failed checks are still recorded")
	}
}

func TestCheck_RetryAnnotatesMessage(t *testing.T) {
	inner := &fakeChecker{out: []probe.Result{{Kind: domain.KindURL, Failure: domain.CategoryTimeout}}}
	svc := New(zap.NewNop(), WithWebChecker(probe.NewRetryChecker(inner)))

	opts := probe.DefaultOptions()
	opts.Retries = 3
	rep, err := svc.CheckWeb(context.Background(), target.Web{Host: "http://example.com"}, opts)
	if err != nil {
		t.Fatalf("CheckWeb: %v", err)
	}
	if inner.calls != 3 || rep.Attempts != 3 {
		t.Fatalf("want 3 attempts, got calls=%d attempts=%d", inner.calls, rep.Attempts)
	}
	if !strings.HasSuffix(rep.Message, "(after 3 attempts)") {
		t.Fatalf("message not annotated: %q", rep.Message)
	}
}

func TestCheck_EndToEndNotFound(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/status/404" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer s.Close()

	store := memory.New()
	svc := New(zap.NewNop(), WithRecorder(store))
	host := strings.TrimPrefix(s.URL, "http://")

	rep, err := svc.CheckWeb(context.Background(), target.Web{Scheme: "http", Host: host, Path: "/status/404"}, probe.DefaultOptions())
	if err != nil {
		t.Fatalf("CheckWeb: %v", err)
	}
	if rep.Severity != domain.SeverityError || !strings.HasSuffix(rep.Message, "404") {
		t.Fatalf("want (Error, ...404), got %+v", rep.Outcome)
	}
	if rep.ResponseTime <= 0 {
		t.Fatalf("response time should be measured, got %v", rep.ResponseTime)
	}
	recs := store.Records()
	if len(recs) != 1 || recs[0].ErrorCategory == nil || *recs[0].ErrorCategory != domain.CategoryHTTPStatus {
		t.Fatalf("unexpected record: %+v", recs)
	}
}
