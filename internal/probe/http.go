package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hamed0406/conncheck/internal/domain"
)

const (
	maxRedirects = 10
	maxBodyRead  = 1 << 20 // 1MB
)

// HTTPChecker issues a single GET per check. A fresh client is built from
// the check's Options every time so settings never leak between checks.
type HTTPChecker struct {
	UserAgent string
}

func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{UserAgent: "conncheck/1.0"}
}

func (h *HTTPChecker) Check(ctx context.Context, target string, opts Options) Result {
	start := time.Now()
	res := Result{Kind: domain.KindURL, Target: target}
	fail := func(c domain.Category, err error) Result {
		res.Failure = c
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}

	if c, err := validateURL(target); err != nil {
		return fail(c, err)
	}

	client, err := h.client(opts)
	if err != nil {
		return fail(domain.CategoryProxy, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail(domain.CategoryInvalidURL, err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fail(categorizeHTTPError(err), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyRead))

	res.StatusCode = resp.StatusCode
	res.Elapsed = time.Since(start)
	return res
}

func (h *HTTPChecker) client(opts Options) (*http.Client, error) {
	timeout := opts.timeout()
	dialer := &net.Dialer{Timeout: timeout}
	tr := &http.Transport{
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify,
		},
		TLSHandshakeTimeout: timeout,
		DisableKeepAlives:   true,
	}
	if err := configureProxy(tr, opts.ProxyURL, dialer); err != nil {
		return nil, err
	}

	follow := opts.FollowRedirects
	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !follow {
				return http.ErrUseLastResponse
			}
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}, nil
}

// validateURL rejects what the transport would refuse anyway, so the caller
// gets a precise category instead of a generic request error.
func validateURL(target string) (domain.Category, error) {
	if !strings.Contains(target, "://") {
		return domain.CategoryMissingScheme, fmt.Errorf("no scheme supplied in %q", target)
	}
	u, err := url.Parse(target)
	if err != nil {
		return domain.CategoryInvalidURL, err
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return domain.CategoryInvalidURL, fmt.Errorf("unsupported protocol scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return domain.CategoryInvalidURL, fmt.Errorf("no host in %q", target)
	}
	return domain.CategoryNone, nil
}
