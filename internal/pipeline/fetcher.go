package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ppiankov/conformia/internal/extract"
	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/util"
)

const fetchAttempts = 3

// fetchSleepFunc is swapped out by tests
var fetchSleepFunc = time.Sleep

// Fetcher downloads documents given as http(s) URLs
type Fetcher struct {
	httpClient *http.Client
	robots     *util.RobotsChecker // nil unless robots.txt is respected
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a new Fetcher. Bodies larger than maxBytes are rejected
// with model.ErrFileTooLarge.
func NewFetcher(cfg model.HTTPConfig, maxBytes int64) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(f.httpClient, cfg.UserAgent)
	}
	return f
}

// FetchResult contains the downloaded bytes and what is known about them
type FetchResult struct {
	Data      []byte
	Name      string // Last path segment, or the Content-Disposition filename
	MediaType string
	FinalURL  string
}

// IsRemote reports whether source names an http(s) URL
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch downloads a document
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		if err := f.robots.Check(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/pdf,application/vnd.openxmlformats-officedocument.wordprocessingml.document;q=0.9,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	finalURL := resp.Request.URL.String()
	name := documentName(finalURL, resp.Header.Get("Content-Disposition"))

	if err := extract.CheckSize(name, resp.ContentLength, f.maxBytes); err != nil {
		return nil, err
	}

	// One byte past the limit tells an oversized body from one that fits
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.limit()+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if err := extract.CheckSize(name, int64(len(body)), f.maxBytes); err != nil {
		return nil, err
	}

	return &FetchResult{
		Data:      body,
		Name:      name,
		MediaType: resp.Header.Get("Content-Type"),
		FinalURL:  finalURL,
	}, nil
}

// FetchWithRetry retries transient failures (5xx, 429, connection errors)
// with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) || ctx.Err() != nil || attempt == fetchAttempts {
			break
		}
		fetchSleepFunc(time.Duration(attempt) * time.Second)
	}
	return nil, lastErr
}

func (f *Fetcher) limit() int64 {
	if f.maxBytes <= 0 {
		return model.MaxFileSize
	}
	return f.maxBytes
}

func isRetryableFetchError(err error) bool {
	if err == nil || errors.Is(err, model.ErrFileTooLarge) {
		return false
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "unexpected status: ") {
		code := strings.Fields(strings.TrimPrefix(msg, "unexpected status: "))
		if len(code) == 0 {
			return false
		}
		return code[0] == "429" || strings.HasPrefix(code[0], "5")
	}
	return strings.HasPrefix(msg, "fetch: ")
}

// documentName prefers the Content-Disposition filename and falls back to
// the URL's last path segment
func documentName(rawURL, disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			return path.Base(params["filename"])
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	p := strings.Trim(parsed.Path, "/")
	if p == "" {
		return parsed.Host
	}
	return path.Base(p)
}
