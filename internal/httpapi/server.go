package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/conncheck/internal/checker"
	apimw "github.com/hamed0406/conncheck/internal/httpapi/middleware"
	"github.com/hamed0406/conncheck/internal/probe"
	"github.com/hamed0406/conncheck/internal/repo"
	"github.com/hamed0406/conncheck/internal/target"
)

// Runner runs one check. *checker.Service satisfies it.
type Runner interface {
	Check(ctx context.Context, spec target.Spec, opts probe.Options) (checker.Report, error)
}

type Server struct {
	Logger    *zap.Logger
	Checks    Runner
	Analytics repo.Analytics
	Metrics   http.Handler // optional, served at /metrics
	Defaults  probe.Options
}

func NewServer(l *zap.Logger, checks Runner, analytics repo.Analytics, defaults probe.Options) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Checks: checks, Analytics: analytics, Defaults: defaults}
}

// Limits are requests per minute and burst for each key class. Zero
// disables limiting for that class.
type Limits struct {
	PublicRPM, PublicBurst int
	AdminRPM, AdminBurst   int
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, lim Limits) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.accessLog)
	r.Use(corsHandler(allowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.Group(func(pub chi.Router) {
			pub.Use(apimw.RequireAny(keys))
			pub.Use(apimw.RateLimit(lim.PublicRPM, lim.PublicBurst))
			pub.Post("/targets/build", s.handleBuildTarget)
			pub.Get("/records", s.handleRecords)
			pub.Get("/analytics", s.handleAnalytics)
		})
		api.Group(func(adm chi.Router) {
			adm.Use(apimw.RequireAdmin(keys))
			adm.Use(apimw.RateLimit(lim.AdminRPM, lim.AdminBurst))
			adm.Post("/checks/url", s.handleCheckURL)
			adm.Post("/checks/ip", s.handleCheckIP)
		})
	})
	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}
