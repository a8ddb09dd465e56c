package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corpix/uarand"
	"golang.org/x/time/rate"
)

// RandomUserAgent selects a fresh browser User-Agent per request.
const RandomUserAgent = "random"

// BrowserHeaders is the header bundle sent with every request unless
// overridden. Nitter instances reject requests that do not look like a
// desktop Chrome navigation.
var BrowserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language":           "en-US,en;q=0.9",
	"Cache-Control":             "max-age=0",
	"Sec-Ch-Ua":                 `"Google Chrome";v="119", "Chromium";v="119", "Not?A_Brand";v="24"`,
	"Sec-Ch-Ua-Mobile":          "?0",
	"Sec-Ch-Ua-Platform":        `"Windows"`,
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}

// Getter is the fetch capability consumed by the importers.
type Getter interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Options configures a Fetcher. Zero values mean defaults.
type Options struct {
	Timeout   time.Duration
	Interval  time.Duration // minimum spacing between requests; <= 0 disables limiting
	UserAgent string
	Headers   map[string]string // merged over BrowserHeaders
}

type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	headers   map[string]string
	userAgent string
}

func NewFetcher(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
	}

	headers := make(map[string]string, len(BrowserHeaders)+len(opts.Headers))
	for k, v := range BrowserHeaders {
		headers[k] = v
	}
	for k, v := range opts.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		limiter:   limiter,
		headers:   headers,
		userAgent: opts.UserAgent,
	}
}

// Get performs a rate-limited GET with the header bundle.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return f.do(req)
}

// Post sends body with the given content type and extra headers.
func (f *Fetcher) Post(ctx context.Context, url, contentType string, body []byte, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return f.do(req)
}

func (f *Fetcher) do(req *http.Request) (*Response, error) {
	if err := f.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	for k, v := range f.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	switch f.userAgent {
	case "":
	case RandomUserAgent:
		req.Header.Set("User-Agent", uarand.GetRandom())
	default:
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
