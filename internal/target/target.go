package target

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hamed0406/conncheck/internal/domain"
)

// Manual is the placeholder an interactive caller sends for a component it
// does not want composed. It is treated exactly like an empty value.
const Manual = "manual"

// Spec is a check target. It is either a Web or a Socket.
type Spec interface {
	Kind() domain.TargetKind
	isSpec()
}

// Web describes an HTTP(S)-style target assembled from components.
type Web struct {
	Scheme    string `json:"protocol"`
	Host      string `json:"address"`
	Extension string `json:"extension"`
	Port      Port   `json:"port"`
	Path      string `json:"path"`
}

// Socket describes a raw TCP target.
type Socket struct {
	Address  string `json:"address"`
	Port     Port   `json:"port"`
	Protocol string `json:"protocol"`
}

// Port is a raw port component. In JSON it may be a number, a numeric
// string, "manual" or null.
type Port string

func (p *Port) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Port(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("port must be a number, a string or null: %w", err)
	}
	*p = Port(n.String())
	return nil
}

func (Web) Kind() domain.TargetKind    { return domain.KindURL }
func (Socket) Kind() domain.TargetKind { return domain.KindIP }
func (Web) isSpec()                    {}
func (Socket) isSpec()                 {}

var schemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ws":    true,
	"wss":   true,
}

// Build returns the connection string for spec.
func Build(spec Spec) (string, error) {
	switch s := spec.(type) {
	case Web:
		return s.Build()
	case *Web:
		if s == nil {
			return "", fmt.Errorf("%w: nil target", domain.ErrInvalidInput)
		}
		return s.Build()
	case Socket:
		return s.Build()
	case *Socket:
		if s == nil {
			return "", fmt.Errorf("%w: nil target", domain.ErrInvalidInput)
		}
		return s.Build()
	default:
		return "", fmt.Errorf("%w: unsupported target %T", domain.ErrInvalidInput, spec)
	}
}

// Build composes scheme://host+extension:port+path. When scheme, extension
// and port are all absent the host is returned untouched. A scheme already
// present in the host is replaced, never doubled.
func (w Web) Build() (string, error) {
	host := strings.TrimSpace(w.Host)
	if host == "" {
		return "", fmt.Errorf("%w: host is required", domain.ErrInvalidInput)
	}

	scheme, err := w.NormalizedScheme()
	if err != nil {
		return "", err
	}
	port, err := ParsePort(string(w.Port))
	if err != nil {
		return "", err
	}
	ext := component(w.Extension)

	if scheme == "" && ext == "" && port == 0 {
		return host, nil
	}

	var b strings.Builder
	if scheme != "" {
		host = stripScheme(host)
		b.WriteString(scheme)
		b.WriteString("://")
	}
	b.WriteString(strings.TrimRight(host, "/"))
	b.WriteString(ext)
	if port != 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(port))
	}
	b.WriteString(component(w.Path))
	return b.String(), nil
}

// NormalizedScheme returns the lower-case scheme without "://", or "" when
// the scheme is absent or manual.
func (w Web) NormalizedScheme() (string, error) {
	s := strings.ToLower(component(w.Scheme))
	s = strings.TrimSuffix(s, "://")
	if s == "" {
		return "", nil
	}
	if !schemes[s] {
		return "", fmt.Errorf("%w: unsupported protocol %q", domain.ErrInvalidInput, w.Scheme)
	}
	return s, nil
}

// Build returns address or address:port.
func (s Socket) Build() (string, error) {
	addr := strings.TrimSpace(s.Address)
	if addr == "" {
		return "", fmt.Errorf("%w: address is required", domain.ErrInvalidInput)
	}
	if _, err := s.NormalizedProtocol(); err != nil {
		return "", err
	}
	port, err := ParsePort(string(s.Port))
	if err != nil {
		return "", err
	}
	if port == 0 {
		return addr, nil
	}
	return addr + ":" + strconv.Itoa(port), nil
}

// NormalizedProtocol returns the transport protocol, defaulting to tcp.
func (s Socket) NormalizedProtocol() (string, error) {
	p := strings.ToLower(component(s.Protocol))
	switch p {
	case "", "tcp":
		return "tcp", nil
	default:
		return "", fmt.Errorf("%w: unsupported protocol %q (only tcp)", domain.ErrInvalidInput, s.Protocol)
	}
}

// ParsePort returns 0 for an absent or manual port.
func ParsePort(raw string) (int, error) {
	v := component(raw)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 65535 {
		return 0, fmt.Errorf("%w: port %q must be 1-65535", domain.ErrInvalidInput, raw)
	}
	return n, nil
}

// component trims v and maps the manual sentinel to "".
func component(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, Manual) {
		return ""
	}
	return v
}

// stripScheme removes a leading "<scheme>://" from host. A "://" that is not
// preceded by a scheme token, such as one inside a query string, is kept.
func stripScheme(host string) string {
	i := strings.Index(host, "://")
	if i <= 0 || !isSchemeToken(host[:i]) {
		return host
	}
	return host[i+3:]
}

// isSchemeToken reports whether s matches ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func isSchemeToken(s string) bool {
	for i, r := range s {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && ('0' <= r && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return s != ""
}
