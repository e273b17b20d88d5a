package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/hamed0406/conncheck/internal/probe"
)

type Config struct {
	Addr           string   `validate:"required,hostname_port"` // API bind address, e.g. "127.0.0.1:8080" or ":8080"
	LogDir         string   `validate:"required"`
	LogLevel       string   `validate:"oneof=debug info warn error"`
	PublicAPIKeys  []string // read routes
	AdminAPIKeys   []string // check routes
	AllowedOrigins []string

	// Defaults for checks that do not set their own options.
	CheckTimeout    time.Duration `validate:"min=1s,max=60s"`
	RetryAttempts   int           `validate:"min=1,max=10"`
	RetryBackoff    time.Duration `validate:"min=0"`
	FollowRedirects bool
	VerifyTLS       bool
	ProxyURL        string `validate:"omitempty,url"`

	PublicRPM   int `validate:"min=0"`
	PublicBurst int `validate:"min=0"`
	AdminRPM    int `validate:"min=0"`
	AdminBurst  int `validate:"min=0"`
}

var defaults = map[string]int{
	"check_timeout_seconds": 3,
	"retry_attempts":        1,
	"retry_backoff_ms":      300,
	"public_rpm":            120,
	"public_burst":          60,
	"admin_rpm":             60,
	"admin_burst":           20,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_addr", "127.0.0.1:8080")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("follow_redirects", true)
	v.SetDefault("verify_tls", true)
	for k, n := range defaults {
		v.SetDefault(k, n)
	}
}

// FromEnv reads the configuration from the environment. Numbers that do not
// parse, or are out of the domain of their setting, fall back to the default;
// use Validate to reject values that are merely too large.
func FromEnv() Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return Config{
		Addr:           v.GetString("api_addr"),
		LogDir:         v.GetString("log_dir"),
		LogLevel:       strings.ToLower(v.GetString("log_level")),
		PublicAPIKeys:  splitList(v.GetString("public_api_keys")),
		AdminAPIKeys:   splitList(v.GetString("admin_api_keys")),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),

		CheckTimeout:    time.Duration(positive(v, "check_timeout_seconds")) * time.Second,
		RetryAttempts:   positive(v, "retry_attempts"),
		RetryBackoff:    time.Duration(nonNegative(v, "retry_backoff_ms")) * time.Millisecond,
		FollowRedirects: v.GetBool("follow_redirects"),
		VerifyTLS:       v.GetBool("verify_tls"),
		ProxyURL:        v.GetString("probe_proxy_url"),

		PublicRPM:   nonNegative(v, "public_rpm"),
		PublicBurst: nonNegative(v, "public_burst"),
		AdminRPM:    nonNegative(v, "admin_rpm"),
		AdminBurst:  nonNegative(v, "admin_burst"),
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	return validate.Struct(c)
}

// ProbeOptions are the default per-check options derived from c.
func (c Config) ProbeOptions() probe.Options {
	return probe.Options{
		Timeout:            c.CheckTimeout,
		Retries:            c.RetryAttempts,
		RetryBackoff:       c.RetryBackoff,
		FollowRedirects:    c.FollowRedirects,
		InsecureSkipVerify: !c.VerifyTLS,
		ProxyURL:           c.ProxyURL,
	}
}

func positive(v *viper.Viper, key string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil && n > 0 {
		return n
	}
	return defaults[key]
}

func nonNegative(v *viper.Viper, key string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil && n >= 0 {
		return n
	}
	return defaults[key]
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
