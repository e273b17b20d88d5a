package probe

import (
	"context"
	"time"

	"github.com/hamed0406/conncheck/internal/domain"
)

const defaultTimeout = 3 * time.Second

// Options are the per-check connection settings.
type Options struct {
	Timeout         time.Duration
	Retries         int
	RetryBackoff    time.Duration
	FollowRedirects bool // web only
	// InsecureSkipVerify disables certificate checks (web only). The zero
	// value verifies.
	InsecureSkipVerify bool
	ProxyURL           string
}

// DefaultOptions mirrors what an interactive caller gets without touching
// any setting.
func DefaultOptions() Options {
	return Options{
		Timeout:         defaultTimeout,
		Retries:         1,
		FollowRedirects: true,
	}
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

// Result is the raw, unclassified outcome of one probe.
//
// Exactly one of StatusCode (web, non-zero), SocketCode (socket, non-nil) or
// Failure (non-empty) describes what happened.
type Result struct {
	Kind   domain.TargetKind
	Target string
	// Host and Port are the parsed socket target parts.
	Host string
	Port string

	StatusCode int
	SocketCode *int
	Failure    domain.Category
	Err        error

	Elapsed  time.Duration
	Attempts int
}

// Detail is the underlying error text, if any.
func (r Result) Detail() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Retryable reports whether another attempt could plausibly change the result.
// Input and proxy configuration failures never are.
func (r Result) Retryable() bool {
	switch r.Failure {
	case domain.CategoryDNS, domain.CategoryConnectionRefused, domain.CategoryConnection,
		domain.CategoryTimeout, domain.CategoryRequest, domain.CategorySocket:
		return true
	case domain.CategoryNone:
	default:
		return false
	}
	if r.SocketCode != nil {
		return *r.SocketCode != 0
	}
	return r.StatusCode >= 500
}

// Checker performs a single probe against a connection string.
type Checker interface {
	Check(ctx context.Context, target string, opts Options) Result
}
