// cmd/preflight/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hamed0406/conncheck/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		for _, fe := range verrs {
			warn(fmt.Sprintf("%s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
		fail("configuration invalid: " + err.Error())
	}

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; anyone can run checks.")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("PUBLIC_API_KEYS is empty; read routes are open.")
	}
	for _, name := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS"} {
		if strings.Contains(os.Getenv(name), " ") {
			warn(name + " contains spaces; they are trimmed, use key1,key2")
		}
	}

	ok("API_ADDR=" + cfg.Addr)
	ok(fmt.Sprintf("checks: timeout=%s attempts=%d backoff=%s redirects=%t verify_tls=%t",
		cfg.CheckTimeout, cfg.RetryAttempts, cfg.RetryBackoff, cfg.FollowRedirects, cfg.VerifyTLS))
	if cfg.ProxyURL != "" {
		ok("PROBE_PROXY_URL present")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; CORS allows every origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	ok("preflight passed")
}
