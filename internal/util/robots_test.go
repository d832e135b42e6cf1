package util

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestRobotsChecker(t *testing.T) {
	var robotsFetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsFetches.Add(1)
			_, _ = w.Write([]byte("User-agent: conformia\nDisallow: /private/\n\nUser-agent: *\nDisallow: /\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "conformia/1.0")
	ctx := context.Background()

	if err := checker.Check(ctx, server.URL+"/public/modelo.docx"); err != nil {
		t.Errorf("Expected public path to be allowed, got %v", err)
	}

	err := checker.Check(ctx, server.URL+"/private/modelo.docx")
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("Expected ErrDisallowed, got %v", err)
	}

	if n := robotsFetches.Load(); n != 1 {
		t.Errorf("Expected robots.txt to be fetched once, got %d", n)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "conformia/1.0")
	if err := checker.Check(context.Background(), server.URL+"/any/file.pdf"); err != nil {
		t.Errorf("Expected fetch to be allowed without robots.txt, got %v", err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"conformia/1.0":                  "conformia",
		"conformia/1.0 (+https://x.org)": "conformia",
		"bot":                            "bot",
		"":                               "",
	}
	for input, want := range tests {
		if got := NormalizeUserAgent(input); got != want {
			t.Errorf("NormalizeUserAgent(%q): expected %q, got %q", input, want, got)
		}
	}
}
