// Package classify turns raw probe results into a severity and a message.
// Every function here is total: unknown inputs resolve to SeverityError.
package classify

import (
	"fmt"

	"github.com/hamed0406/conncheck/internal/domain"
	"github.com/hamed0406/conncheck/internal/probe"
)

type entry struct {
	severity domain.Severity
	message  string
	category domain.Category
}

var httpTable = map[int]entry{
	200: {domain.SeveritySuccess, "✅ Connection successful", domain.CategoryNone},
	301: {domain.SeverityWarning, "🔄 Permanent redirect", domain.CategoryNone},
	302: {domain.SeverityWarning, "🔄 Temporary redirect", domain.CategoryNone},
	307: {domain.SeverityWarning, "🔄 Temporary redirect", domain.CategoryNone},
	308: {domain.SeverityWarning, "🔄 Permanent redirect", domain.CategoryNone},
	400: {domain.SeverityWarning, "❌ Bad request", domain.CategoryNone},
	401: {domain.SeverityWarning, "🔒 Unauthorized", domain.CategoryNone},
	403: {domain.SeverityError, "🚫 Access denied", domain.CategoryHTTPStatus},
	404: {domain.SeverityError, "❓ Page not found", domain.CategoryHTTPStatus},
}

var httpFallback = entry{domain.SeverityError, "⚠️ HTTP error", domain.CategoryHTTPStatus}

// Socket codes are errno values: Linux first, then the Windows WSA code.
// Messages take the host as %[1]s and the port as %[2]s.
var socketTable = map[int]entry{
	0:     {domain.SeveritySuccess, "✅ TCP port %[2]s open on %[1]s", domain.CategoryNone},
	111:   {domain.SeverityError, "❌ TCP port %[2]s closed on %[1]s: connection refused", domain.CategoryConnectionRefused},
	10061: {domain.SeverityError, "❌ TCP port %[2]s closed on %[1]s: connection refused", domain.CategoryConnectionRefused},
	110:   {domain.SeverityError, "❌ Connection timeout to %[1]s:%[2]s", domain.CategoryTimeout},
	10060: {domain.SeverityError, "❌ Connection timeout to %[1]s:%[2]s", domain.CategoryTimeout},
	113:   {domain.SeverityError, "❌ No route to host: %[1]s", domain.CategoryNoRoute},
	10065: {domain.SeverityError, "❌ No route to host: %[1]s", domain.CategoryNoRoute},
}

// HTTPStatus classifies an HTTP response code.
func HTTPStatus(code int) domain.Outcome {
	e, ok := httpTable[code]
	if !ok {
		e = httpFallback
	}
	c := code
	return domain.Outcome{
		Severity: e.severity,
		Message:  fmt.Sprintf("%s: %d", e.message, code),
		Category: e.category,
		Code:     &c,
	}
}

// SocketCode classifies a TCP connect result code for host:port.
func SocketCode(code int, host, port string) domain.Outcome {
	c := code
	e, ok := socketTable[code]
	if !ok {
		return domain.Outcome{
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf("❌ Connection error (%d) to %s:%s", code, host, port),
			Category: domain.CategorySocket,
			Code:     &c,
		}
	}
	return domain.Outcome{
		Severity: e.severity,
		Message:  fmt.Sprintf(e.message, host, port),
		Category: e.category,
		Code:     &c,
	}
}

// Failure classifies a probe that produced no status or socket code.
func Failure(kind domain.TargetKind, category domain.Category, target, detail string) domain.Outcome {
	out := domain.Outcome{
		Severity: domain.SeverityError,
		Category: category,
		Detail:   detail,
	}

	switch category {
	case domain.CategoryMissingScheme:
		out.Message = "❌ URL error: missing scheme (http:// or https://)"
	case domain.CategoryInvalidURL:
		out.Message = "❌ URL error: " + detail
	case domain.CategoryDNS:
		out.Message = "❌ DNS error: domain not found"
	case domain.CategoryConnectionRefused:
		out.Message = "❌ Connection refused: server unavailable"
	case domain.CategoryConnection:
		out.Message = "❌ Connection error: " + detail
	case domain.CategoryTimeout:
		if kind == domain.KindIP {
			out.Message = "❌ Timeout connecting to " + target
		} else {
			out.Message = "❌ Timeout: " + detail
		}
	case domain.CategoryTooManyRedirects:
		out.Message = "❌ Too many redirects: " + detail
	case domain.CategoryTLS:
		out.Message = "❌ SSL/TLS verification failed: " + detail
	case domain.CategoryRequest:
		out.Message = "❌ Request error: " + detail
	case domain.CategoryInvalidFormat:
		out.Message = "❌ Invalid format, expected HOST:PORT"
	case domain.CategorySocket:
		out.Message = "❌ Socket error: " + detail
	case domain.CategoryProxy:
		out.Message = "❌ Proxy error: " + detail
	default:
		out.Category = domain.CategoryUnknown
		out.Message = "❌ Connection error: " + detail
	}
	return out
}

// Result classifies a raw probe result.
func Result(r probe.Result) domain.Outcome {
	var out domain.Outcome
	switch {
	case r.Failure != domain.CategoryNone:
		out = Failure(r.Kind, r.Failure, r.Target, r.Detail())
	case r.SocketCode != nil:
		out = SocketCode(*r.SocketCode, r.Host, r.Port)
		out.Detail = r.Detail()
	case r.StatusCode != 0:
		out = HTTPStatus(r.StatusCode)
	default:
		out = Failure(r.Kind, domain.CategoryUnknown, r.Target, "no response recorded")
	}
	out.Attempts = r.Attempts
	return out
}
