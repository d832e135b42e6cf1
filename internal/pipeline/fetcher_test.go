package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/util"
)

func newTestFetcher(maxBytes int64) *Fetcher {
	return NewFetcher(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test-agent"}, maxBytes)
}

func noSleep(t *testing.T) {
	t.Helper()
	orig := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = orig })
}

func TestFetchWithRetry_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Expected User-Agent test-agent, got %s", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = fmt.Fprint(w, "%PDF-1.4")
	}))
	defer server.Close()

	result, err := newTestFetcher(1<<20).FetchWithRetry(context.Background(), server.URL+"/docs/Relat%C3%B3rio.pdf")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(result.Data) != "%PDF-1.4" {
		t.Errorf("Unexpected body: %s", result.Data)
	}
	if result.Name != "Relatório.pdf" {
		t.Errorf("Expected name Relatório.pdf, got %s", result.Name)
	}
	if result.MediaType != "application/pdf" {
		t.Errorf("Expected media type application/pdf, got %s", result.MediaType)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "OK")
	}))
	defer server.Close()
	noSleep(t)

	result, err := newTestFetcher(1<<20).FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if string(result.Data) != "OK" {
		t.Errorf("Unexpected body: %s", result.Data)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	noSleep(t)

	_, err := newTestFetcher(1<<20).FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	if got := err.Error(); got != "unexpected status: 404 404 Not Found" {
		t.Errorf("Unexpected error: %s", got)
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected no retries for 404, got %d attempts", attempts.Load())
	}
}

func TestFetchWithRetry_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	noSleep(t)

	_, err := newTestFetcher(1<<20).FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error after all retries exhausted")
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_429Retried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprint(w, "OK")
	}))
	defer server.Close()
	noSleep(t)

	if _, err := newTestFetcher(1<<20).FetchWithRetry(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected success after 429 retry, got %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts.Load())
	}
}

func TestFetch_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 64))
	}))
	defer server.Close()
	noSleep(t)

	_, err := newTestFetcher(16).FetchWithRetry(context.Background(), server.URL+"/big.pdf")
	if !errors.Is(err, model.ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got %v", err)
	}
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		url         string
		disposition string
		want        string
	}{
		{"https://example.com/files/contrato.docx", "", "contrato.docx"},
		{"https://example.com/", "", "example.com"},
		{"https://example.com/download?id=3", `attachment; filename="modelo.pdf"`, "modelo.pdf"},
		{"https://example.com/a%20b.pdf", "", "a b.pdf"},
	}

	for _, tt := range tests {
		if got := documentName(tt.url, tt.disposition); got != tt.want {
			t.Errorf("documentName(%q, %q) = %q, want %q", tt.url, tt.disposition, got, tt.want)
		}
	}
}

func TestIsRemote(t *testing.T) {
	if !IsRemote("https://example.com/a.pdf") || !IsRemote("http://example.com/a.pdf") {
		t.Error("Expected http(s) URLs to be remote")
	}
	if IsRemote("/tmp/a.pdf") || IsRemote("httpdocs/a.pdf") {
		t.Error("Expected file paths to be local")
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		err       string
		retryable bool
	}{
		{"unexpected status: 503 Service Unavailable", true},
		{"unexpected status: 500 Internal Server Error", true},
		{"unexpected status: 502 Bad Gateway", true},
		{"unexpected status: 429 Too Many Requests", true},
		{"unexpected status: 404 Not Found", false},
		{"unexpected status: 403 Forbidden", false},
		{"fetch: connection refused", true},
		{"fetch: connection reset by peer", true},
		{"create request: invalid URL", false},
		{"read body: unexpected EOF", false},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			if got := isRetryableFetchError(errors.New(tt.err)); got != tt.retryable {
				t.Errorf("isRetryableFetchError(%q) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}

	if isRetryableFetchError(nil) {
		t.Error("Expected nil error to not be retryable")
	}
	if isRetryableFetchError(fmt.Errorf("%w: big", model.ErrFileTooLarge)) {
		t.Error("Expected size errors to not be retryable")
	}
}

func TestFetch_RespectsRobots(t *testing.T) {
	var documentHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /restrito/\n"))
			return
		}
		documentHits.Add(1)
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "conformia/1.0", RespectRobots: true}, 0)

	_, err := f.FetchWithRetry(context.Background(), server.URL+"/restrito/modelo.pdf")
	if !errors.Is(err, util.ErrDisallowed) {
		t.Fatalf("Expected ErrDisallowed, got %v", err)
	}
	if !IsInputError(err) {
		t.Error("Expected robots rejection to count as an input error")
	}
	if n := documentHits.Load(); n != 0 {
		t.Errorf("Expected no document request, got %d", n)
	}

	result, err := f.Fetch(context.Background(), server.URL+"/publico/modelo.pdf")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Name != "modelo.pdf" {
		t.Errorf("Expected name modelo.pdf, got %s", result.Name)
	}
}
