package checker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/conncheck/internal/classify"
	"github.com/hamed0406/conncheck/internal/domain"
	"github.com/hamed0406/conncheck/internal/probe"
	"github.com/hamed0406/conncheck/internal/repo"
	"github.com/hamed0406/conncheck/internal/target"
)

// Report is what a caller gets back from one check.
type Report struct {
	Kind   domain.TargetKind `json:"type"`
	Target string            `json:"target"`
	domain.Outcome
	ResponseTime float64   `json:"response_time"` // seconds
	CheckedAt    time.Time `json:"checked_at"`
}

// Service runs checks: build the target, probe it, classify the result and
// hand a record to the recorder.
type Service struct {
	logger   *zap.Logger
	web      probe.Checker
	socket   probe.Checker
	recorder repo.Recorder
}

type Option func(*Service)

// WithRecorder sets where completed checks are recorded. Without it nothing
// is recorded.
func WithRecorder(r repo.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithWebChecker(c probe.Checker) Option {
	return func(s *Service) { s.web = c }
}

func WithSocketChecker(c probe.Checker) Option {
	return func(s *Service) { s.socket = c }
}

func New(logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		logger: logger,
		web:    probe.NewRetryChecker(probe.NewHTTPChecker()),
		socket: probe.NewRetryChecker(probe.NewTCPChecker()),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) CheckWeb(ctx context.Context, w target.Web, opts probe.Options) (Report, error) {
	return s.Check(ctx, w, opts)
}

func (s *Service) CheckSocket(ctx context.Context, sock target.Socket, opts probe.Options) (Report, error) {
	return s.Check(ctx, sock, opts)
}

// Check runs one check. The only error it returns wraps
// domain.ErrInvalidInput, in which case nothing was probed or recorded.
// Every network condition is reported through the Report instead.
func (s *Service) Check(ctx context.Context, spec target.Spec, opts probe.Options) (Report, error) {
	addr, err := target.Build(spec)
	if err != nil {
		s.logger.Warn("check_rejected", zap.Error(err))
		return Report{}, err
	}

	kind := spec.Kind()
	chk := s.web
	if kind == domain.KindIP {
		chk = s.socket
	}

	start := time.Now()
	raw := chk.Check(ctx, addr, opts)
	elapsed := time.Since(start)

	out := classify.Result(raw)
	if out.Severity == domain.SeverityError && out.Attempts > 1 {
		out.Message = fmt.Sprintf("%s (after %d attempts)", out.Message, out.Attempts)
	}

	rep := Report{
		Kind:         kind,
		Target:       addr,
		Outcome:      out,
		ResponseTime: elapsed.Seconds(),
		CheckedAt:    start.UTC(),
	}
	s.record(spec, raw, rep)

	s.logger.Info("check_completed",
		zap.String("type", string(kind)),
		zap.String("target", addr),
		zap.String("severity", string(out.Severity)),
		zap.String("category", string(out.Category)),
		zap.Int("attempts", out.Attempts),
		zap.Float64("response_time_s", rep.ResponseTime),
	)
	return rep, nil
}

func (s *Service) record(spec target.Spec, raw probe.Result, rep Report) {
	if s.recorder == nil {
		return
	}
	protocol, port := describe(spec, raw)
	rec := domain.CheckRecord{
		Timestamp:    rep.CheckedAt,
		Kind:         rep.Kind,
		Target:       rep.Target,
		Severity:     rep.Severity,
		ResponseTime: rep.ResponseTime,
		Protocol:     protocol,
		Port:         port,
	}
	if rep.Severity == domain.SeverityError {
		c := rep.Category
		if c == domain.CategoryNone {
			c = domain.CategoryUnknown
		}
		rec.ErrorCategory = &c
	}
	s.recorder.Record(rec)
}

// describe returns the protocol and port a check used, as far as they are
// known from the components or the probe.
func describe(spec target.Spec, raw probe.Result) (string, *int) {
	var protocol, portRaw string
	switch v := spec.(type) {
	case target.Web:
		protocol, portRaw = webProtocol(v, raw.Target), string(v.Port)
	case *target.Web:
		protocol, portRaw = webProtocol(*v, raw.Target), string(v.Port)
	case target.Socket:
		protocol, portRaw = "tcp", string(v.Port)
	case *target.Socket:
		protocol, portRaw = "tcp", string(v.Port)
	}
	if portRaw == "" || strings.EqualFold(portRaw, target.Manual) {
		portRaw = raw.Port
	}
	n, err := target.ParsePort(portRaw)
	if err != nil || n == 0 {
		return protocol, nil
	}
	return protocol, &n
}

func webProtocol(w target.Web, addr string) string {
	if s, err := w.NormalizedScheme(); err == nil && s != "" {
		return s
	}
	if i := strings.Index(addr, "://"); i > 0 {
		return strings.ToLower(addr[:i])
	}
	return ""
}
