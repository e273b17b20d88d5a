package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func parseProxy(proxyURL string) (*url.URL, error) {
	if proxyURL == "" {
		return nil, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("proxy url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
		return u, nil
	default:
		return nil, fmt.Errorf("proxy url: unsupported scheme %q", u.Scheme)
	}
}

// socksDialer routes base through a SOCKS5 proxy when u is one; otherwise it
// returns base unchanged.
func socksDialer(u *url.URL, base *net.Dialer) (dialFunc, error) {
	if u == nil || (u.Scheme != "socks5" && u.Scheme != "socks5h") {
		return base.DialContext, nil
	}

	var auth *proxy.Auth
	if u.User != nil {
		auth = &proxy.Auth{User: u.User.Username()}
		if p, ok := u.User.Password(); ok {
			auth.Password = p
		}
	}

	d, err := proxy.SOCKS5("tcp", u.Host, auth, base)
	if err != nil {
		return nil, fmt.Errorf("socks5 dialer: %w", err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}

// configureProxy wires proxyURL into tr. HTTP proxies use tr.Proxy, SOCKS5
// proxies replace the dialer.
func configureProxy(tr *http.Transport, proxyURL string, base *net.Dialer) error {
	u, err := parseProxy(proxyURL)
	if err != nil {
		return err
	}
	if u != nil && (u.Scheme == "http" || u.Scheme == "https") {
		tr.Proxy = http.ProxyURL(u)
		return nil
	}
	dial, err := socksDialer(u, base)
	if err != nil {
		return err
	}
	tr.DialContext = dial
	return nil
}
