package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hamed0406/conncheck/internal/checker"
	"github.com/hamed0406/conncheck/internal/domain"
	"github.com/hamed0406/conncheck/internal/logging"
	"github.com/hamed0406/conncheck/internal/probe"
	"github.com/hamed0406/conncheck/internal/target"
)

// Exit codes: 0 success, 1 warning, 2 error, 64 bad input.
const exitUsage = 64

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("conncheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		kind      = fs.StringP("type", "t", "url", "target type: url or ip")
		protocol  = fs.StringP("protocol", "p", target.Manual, "scheme for url (http, https, ftp, ws, wss) or tcp for ip")
		address   = fs.StringP("address", "a", "", "host, IP or full URL")
		extension = fs.StringP("extension", "e", target.Manual, "domain extension appended to the host, e.g. .com")
		port      = fs.StringP("port", "P", target.Manual, "port")
		path      = fs.String("path", "", "path appended to url targets")
		timeout   = fs.Duration("timeout", 3*time.Second, "per-attempt timeout")
		retries   = fs.IntP("retries", "r", 1, "attempts for transient failures")
		backoff   = fs.Duration("backoff", 0, "pause between attempts")
		redirects = fs.Bool("follow-redirects", true, "follow HTTP redirects")
		verify    = fs.Bool("verify-tls", true, "verify TLS certificates")
		proxyURL  = fs.String("proxy", "", "http(s) or socks5 proxy URL")
		logDir    = fs.String("log-dir", "", "write a JSON log to this directory")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *address == "" && fs.NArg() > 0 {
		*address = fs.Arg(0)
	}

	logger := zap.NewNop()
	if *logDir != "" {
		l, err := logging.NewLogger(*logDir, "info")
		if err != nil {
			fmt.Fprintln(stderr, "log:", err)
			return exitUsage
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	var spec target.Spec
	switch domain.TargetKind(*kind) {
	case domain.KindURL:
		spec = target.Web{Scheme: *protocol, Host: *address, Extension: *extension, Port: target.Port(*port), Path: *path}
	case domain.KindIP:
		spec = target.Socket{Address: *address, Port: target.Port(*port), Protocol: *protocol}
	default:
		fmt.Fprintf(stderr, "unknown type %q (want url or ip)\n", *kind)
		return exitUsage
	}

	opts := probe.Options{
		Timeout:            *timeout,
		Retries:            *retries,
		RetryBackoff:       *backoff,
		FollowRedirects:    *redirects,
		InsecureSkipVerify: !*verify,
		ProxyURL:           *proxyURL,
	}

	rep, err := checker.New(logger).Check(ctx, spec, opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	fmt.Fprintf(stdout, "%s\t%s\n", rep.Target, rep.Message)
	fmt.Fprintf(stdout, "status=%s response_time=%.3fs\n", rep.Severity, rep.ResponseTime)
	if rep.Detail != "" {
		fmt.Fprintln(stdout, "detail:", rep.Detail)
	}
	return exitCode(rep.Severity)
}

func exitCode(s domain.Severity) int {
	switch s {
	case domain.SeveritySuccess:
		return 0
	case domain.SeverityWarning:
		return 1
	default:
		return 2
	}
}
