package nitter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/url-importer/pkg/fetcher"
	"github.com/dtnitsch/url-importer/pkg/vault"
)

const testOrigin = "https://nitter.test"

type fakeGetter struct {
	pages map[string]string
	calls []string
}

func (f *fakeGetter) Get(_ context.Context, u string) (*fetcher.Response, error) {
	f.calls = append(f.calls, u)
	body, ok := f.pages[u]
	if !ok {
		return nil, &fetcher.HTTPError{StatusCode: http.StatusNotFound, URL: u}
	}
	return &fetcher.Response{URL: u, StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

func (f *fakeGetter) count(u string) int {
	n := 0
	for _, c := range f.calls {
		if c == u {
			n++
		}
	}
	return n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestVault(t *testing.T) *vault.FS {
	t.Helper()
	v, err := vault.NewFS(t.TempDir(), io.Discard, "")
	if err != nil {
		t.Fatalf("failed to create vault: %v", err)
	}
	return v
}

func setupTestImporter(t *testing.T, getter fetcher.Getter, naming string) (*Importer, *vault.FS) {
	t.Helper()
	v := setupTestVault(t)
	im, err := NewImporter(getter, v, Config{Origin: testOrigin, AssetNaming: naming, MaxPages: 10}, testLogger())
	if err != nil {
		t.Fatalf("failed to create importer: %v", err)
	}
	return im, v
}

func mustPage(t *testing.T, u, html string) Page {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return Page{URL: u, Doc: doc}
}

// leadPage builds a first page with the given trunk body and trailing markup.
func leadPage(trunk, after string) string {
	return `<html><body><div class="conversation"><div class="main-thread">` +
		`<a class="username" href="/alice">@alice</a>` +
		`<p class="tweet-published">Mar 25, 2023 · 3:45 PM UTC</p>` +
		trunk + `</div>` + after + `</div></body></html>`
}

func replyPage(trunk, after string) string {
	return `<html><body><div class="conversation"><div class="after-tweet thread-line">` +
		trunk + `</div>` + after + `</div></body></html>`
}

func post(text string) string {
	return `<div class="tweet-content media-body">` + text + `</div>`
}

func moreLink(href string) string {
	return `<div class="show-more"><a class="more-replies-text" href="` + href + `">more replies</a></div>`
}

const threadLast = `<div class="timeline-item thread-last"></div>`
