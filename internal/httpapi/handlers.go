package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hamed0406/conncheck/internal/domain"
	"github.com/hamed0406/conncheck/internal/probe"
	"github.com/hamed0406/conncheck/internal/repo"
	"github.com/hamed0406/conncheck/internal/target"
)

var validate = validator.New()

// optionsPayload overrides the server defaults for one check.
type optionsPayload struct {
	Timeout         *float64 `json:"timeout" validate:"omitempty,gt=0,lte=60"` // seconds
	Retries         *int     `json:"retries" validate:"omitempty,min=1,max=10"`
	FollowRedirects *bool    `json:"follow_redirects"`
	VerifyTLS       *bool    `json:"verify_ssl"`
}

func (p *optionsPayload) apply(base probe.Options) probe.Options {
	if p == nil {
		return base
	}
	if p.Timeout != nil {
		base.Timeout = time.Duration(*p.Timeout * float64(time.Second))
	}
	if p.Retries != nil {
		base.Retries = *p.Retries
	}
	if p.FollowRedirects != nil {
		base.FollowRedirects = *p.FollowRedirects
	}
	if p.VerifyTLS != nil {
		base.InsecureSkipVerify = !*p.VerifyTLS
	}
	return base
}

type urlCheckPayload struct {
	target.Web
	URL     string          `json:"url"` // full URL, used verbatim when address is empty
	Options *optionsPayload `json:"options"`
}

func (p urlCheckPayload) web() target.Web {
	w := p.Web
	if w.Host == "" && p.URL != "" {
		return target.Web{Host: p.URL}
	}
	return w
}

type ipCheckPayload struct {
	target.Socket
	Options *optionsPayload `json:"options"`
}

type buildPayload struct {
	Kind      domain.TargetKind `json:"type" validate:"oneof=url ip"`
	Protocol  string            `json:"protocol"`
	Address   string            `json:"address"`
	Extension string            `json:"extension"`
	Port      target.Port       `json:"port"`
	Path      string            `json:"path"`
}

func (p buildPayload) spec() target.Spec {
	if p.Kind == domain.KindIP {
		return target.Socket{Address: p.Address, Port: p.Port, Protocol: p.Protocol}
	}
	return target.Web{Scheme: p.Protocol, Host: p.Address, Extension: p.Extension, Port: p.Port, Path: p.Path}
}

func (s *Server) handleBuildTarget(w http.ResponseWriter, r *http.Request) {
	var p buildPayload
	if !decode(w, r, &p) {
		return
	}
	if p.Kind == "" {
		p.Kind = domain.KindURL
	}
	if err := validate.Struct(p); err != nil {
		writeError(w, http.StatusBadRequest, "type must be url or ip")
		return
	}
	addr, err := target.Build(p.spec())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"type": p.Kind, "target": addr})
}

func (s *Server) handleCheckURL(w http.ResponseWriter, r *http.Request) {
	var p urlCheckPayload
	if !decode(w, r, &p) || !validOptions(w, p.Options) {
		return
	}
	s.runCheck(w, r, p.web(), p.Options.apply(s.Defaults))
}

func (s *Server) handleCheckIP(w http.ResponseWriter, r *http.Request) {
	var p ipCheckPayload
	if !decode(w, r, &p) || !validOptions(w, p.Options) {
		return
	}
	s.runCheck(w, r, p.Socket, p.Options.apply(s.Defaults))
}

func (s *Server) runCheck(w http.ResponseWriter, r *http.Request, spec target.Spec, opts probe.Options) {
	rep, err := s.Checks.Check(r.Context(), spec, opts)
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.Logger.Error("check_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "check failed")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleRecords lists recorded checks oldest first. ?limit=N keeps the
// newest N.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	recs := s.Analytics.Records()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if n < len(recs) {
			recs = recs[len(recs)-n:]
		}
	}
	if recs == nil {
		recs = []domain.CheckRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

type analyticsResponse struct {
	repo.Summary
	Timeline []repo.TimelineBucket `json:"timeline"`
}

// handleAnalytics returns the aggregate summary plus a timeline bucketed by
// ?bucket (a Go duration, default 1h).
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	bucket := time.Hour
	if raw := r.URL.Query().Get("bucket"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "bucket must be a positive duration")
			return
		}
		bucket = d
	}
	tl := s.Analytics.Timeline(bucket)
	if tl == nil {
		tl = []repo.TimelineBucket{}
	}
	writeJSON(w, http.StatusOK, analyticsResponse{Summary: s.Analytics.Summary(), Timeline: tl})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return false
	}
	return true
}

func validOptions(w http.ResponseWriter, p *optionsPayload) bool {
	if p == nil {
		return true
	}
	if err := validate.Struct(p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid options: timeout must be in (0,60], retries in [1,10]")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
