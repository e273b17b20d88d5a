package domain

import (
	"errors"
	"time"
)

// ErrInvalidInput is returned when a required target component is missing or
// malformed. Nothing has been probed when it is returned.
var ErrInvalidInput = errors.New("invalid input")

type Severity string

const (
	SeveritySuccess Severity = "Success"
	SeverityWarning Severity = "Warning"
	SeverityError   Severity = "Error"
)

type TargetKind string

const (
	KindURL TargetKind = "url"
	KindIP  TargetKind = "ip"
)

// Category names why a check ended in Error. Empty for Success and Warning.
type Category string

const (
	CategoryNone              Category = ""
	CategoryMissingScheme     Category = "missing_scheme"
	CategoryInvalidURL        Category = "invalid_url"
	CategoryDNS               Category = "dns_error"
	CategoryConnectionRefused Category = "connection_refused"
	CategoryConnection        Category = "connection_error"
	CategoryTimeout           Category = "timeout"
	CategoryTooManyRedirects  Category = "too_many_redirects"
	CategoryRequest           Category = "request_error"
	CategoryTLS               Category = "ssl_error"
	CategoryInvalidFormat     Category = "invalid_format"
	CategorySocket            Category = "socket_error"
	CategoryNoRoute           Category = "no_route"
	CategoryHTTPStatus        Category = "http_status"
	CategoryProxy             Category = "proxy_error"
	CategoryUnknown           Category = "unknown"
)

// Outcome is the classified result of one check.
type Outcome struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Category Category `json:"category,omitempty"`
	// Code is the HTTP status or the socket result code, when one was observed.
	Code     *int   `json:"code,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}

func (o Outcome) OK() bool { return o.Severity == SeveritySuccess }

// CheckRecord is one entry of the session check log.
type CheckRecord struct {
	ID            string     `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	Kind          TargetKind `json:"type"`
	Target        string     `json:"target"`
	Severity      Severity   `json:"status"`
	ResponseTime  float64    `json:"response_time"` // seconds
	Protocol      string     `json:"protocol,omitempty"`
	Port          *int       `json:"port,omitempty"`
	ErrorCategory *Category  `json:"error_type"`
}
