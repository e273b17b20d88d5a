package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/conncheck/internal/domain"
)

// ErrInvalidFormat is wrapped by SplitTarget for anything that is not HOST:PORT.
var ErrInvalidFormat = errors.New("invalid format, expected HOST:PORT")

// ErrProxyNotTCP is reported when a socket check is given an HTTP proxy.
var ErrProxyNotTCP = errors.New("http proxy cannot carry raw TCP, use socks5")

// TCPChecker opens one TCP connection and reports the connect result code,
// 0 when the port accepted the connection.
type TCPChecker struct{}

func NewTCPChecker() *TCPChecker { return &TCPChecker{} }

func (c *TCPChecker) Check(ctx context.Context, target string, opts Options) Result {
	start := time.Now()
	res := Result{Kind: domain.KindIP, Target: target}

	host, port, err := SplitTarget(target)
	if err != nil {
		res.Failure = domain.CategoryInvalidFormat
		res.Err = err
		return res
	}
	res.Host, res.Port = host, port

	timeout := opts.timeout()
	u, err := parseProxy(opts.ProxyURL)
	if err == nil && u != nil && (u.Scheme == "http" || u.Scheme == "https") {
		err = ErrProxyNotTCP
	}
	if err != nil {
		res.Failure = domain.CategoryProxy
		res.Err = err
		return res
	}
	dial, err := socksDialer(u, &net.Dialer{Timeout: timeout})
	if err != nil {
		res.Failure = domain.CategoryProxy
		res.Err = err
		return res
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dial(dctx, "tcp", net.JoinHostPort(host, port))
	res.Elapsed = time.Since(start)
	if conn != nil {
		defer conn.Close()
	}

	switch {
	case err == nil:
		code := 0
		res.SocketCode = &code
	case isTimeout(err):
		res.Failure = domain.CategoryTimeout
		res.Err = err
	default:
		res.Err = err
		if code, ok := connectErrno(err); ok {
			res.SocketCode = &code
		} else {
			res.Failure = domain.CategorySocket
		}
	}
	return res
}

// SplitTarget parses HOST:PORT. Exactly one colon and a numeric port are
// required, so bare IPv6 literals are rejected.
func SplitTarget(target string) (host, port string, err error) {
	if strings.Count(target, ":") != 1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidFormat, target)
	}
	host, port, _ = strings.Cut(target, ":")
	host, port = strings.TrimSpace(host), strings.TrimSpace(port)
	if host == "" {
		return "", "", fmt.Errorf("%w: empty host in %q", ErrInvalidFormat, target)
	}
	n, convErr := strconv.Atoi(port)
	if convErr != nil || n < 1 || n > 65535 {
		return "", "", fmt.Errorf("%w: bad port in %q", ErrInvalidFormat, target)
	}
	return host, port, nil
}
