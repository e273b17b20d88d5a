package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/hamed0406/conncheck/internal/domain"
)

// ErrTooManyRedirects stops a redirect chain longer than maxRedirects.
var ErrTooManyRedirects = errors.New("stopped after 10 redirects")

// categorizeHTTPError maps a client.Do error to a failure category. Typed
// errors are checked first; the text rules only catch what the standard
// library does not expose structurally.
func categorizeHTTPError(err error) domain.Category {
	switch {
	case errors.Is(err, ErrTooManyRedirects):
		return domain.CategoryTooManyRedirects
	case isTLSError(err):
		return domain.CategoryTLS
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return domain.CategoryTimeout
		}
		return domain.CategoryDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.CategoryConnectionRefused
	}
	if isTimeout(err) {
		return domain.CategoryTimeout
	}
	if c := categorizeByText(err.Error()); c != domain.CategoryNone {
		return c
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.CategoryConnection
	}
	return domain.CategoryRequest
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isTLSError(err error) bool {
	var (
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		invalidErr  x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr)
}

// Message fragments differ between platforms and Go releases; keep this list
// as the last resort.
var textRules = []struct {
	needle   string
	category domain.Category
}{
	{"no such host", domain.CategoryDNS},
	{"name or service not known", domain.CategoryDNS},
	{"connection refused", domain.CategoryConnectionRefused},
	{"actively refused", domain.CategoryConnectionRefused},
	{"certificate", domain.CategoryTLS},
	{"tls:", domain.CategoryTLS},
	{"timeout", domain.CategoryTimeout},
	{"deadline exceeded", domain.CategoryTimeout},
}

func categorizeByText(msg string) domain.Category {
	msg = strings.ToLower(msg)
	for _, r := range textRules {
		if strings.Contains(msg, r.needle) {
			return r.category
		}
	}
	return domain.CategoryNone
}

// connectErrno extracts the OS error number from a failed dial, the way a
// connect_ex call would report it.
func connectErrno(err error) (int, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno), true
	}
	return 0, false
}
