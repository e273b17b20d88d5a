package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_InvalidInputIsLoggedAndExits64(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--log-dir", dir, "--protocol", "gopher", "--address", "example.com"}, &stdout, &stderr)
	if code != exitUsage {
		t.Fatalf("want exit %d, got %d (stderr=%q)", exitUsage, code, stderr.String())
	}
	b, err := os.ReadFile(filepath.Join(dir, "conncheck.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "check_rejected") {
		t.Fatalf("log missing rejection: %s", b)
	}
}

func TestRun_ExitCodeBySeverity(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer s.Close()

	cases := []struct {
		url  string
		want int
	}{
		{s.URL, 0},
		{s.URL + "/missing", 2},
	}
	for _, c := range cases {
		var stdout, stderr bytes.Buffer
		if got := run(context.Background(), []string{c.url}, &stdout, &stderr); got != c.want {
			t.Fatalf("%s: want exit %d, got %d (%s)", c.url, c.want, got, stdout.String())
		}
		if !strings.Contains(stdout.String(), "status=") {
			t.Fatalf("%s: no report printed: %q", c.url, stdout.String())
		}
	}

	var stdout, stderr bytes.Buffer
	if got := run(context.Background(), []string{"--type", "dns", "x"}, &stdout, &stderr); got != exitUsage {
		t.Fatalf("unknown type: want %d, got %d", exitUsage, got)
	}
}

func TestExitCode(t *testing.T) {
	if exitCode("Success") != 0 || exitCode("Warning") != 1 || exitCode("Error") != 2 {
		t.Fatal("unexpected exit codes")
	}
}
