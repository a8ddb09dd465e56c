package nitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/url-importer/pkg/fetcher"
)

// ErrInitialFetch means the first page of a thread could not be retrieved.
var ErrInitialFetch = errors.New("initial thread fetch failed")

// DefaultMaxPages bounds a walk when no limit is configured.
const DefaultMaxPages = 100

const (
	terminalSelector = ".timeline-item.thread-last"
	moreLinkSelector = "a.more-replies-text"
)

// Page is one fetched thread page.
type Page struct {
	URL string
	Doc *goquery.Document
}

// Walker follows "load more" continuations until the thread ends.
type Walker struct {
	getter   fetcher.Getter
	origin   *url.URL
	maxPages int
	logger   *slog.Logger
}

func NewWalker(getter fetcher.Getter, origin string, maxPages int, logger *slog.Logger) (*Walker, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("failed to parse origin %q: %w", origin, err)
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Walker{getter: getter, origin: base, maxPages: maxPages, logger: logger}, nil
}

// FetchThread returns every page of the thread at threadURL in fetch order.
// A failure on the first page is reported as ErrInitialFetch. Later failures
// end the walk and keep what was already collected.
func (w *Walker) FetchThread(ctx context.Context, threadURL string) ([]Page, error) {
	var pages []Page
	seen := make(map[string]bool)
	next := threadURL

	for len(pages) < w.maxPages {
		seen[next] = true

		page, err := w.fetchPage(ctx, next)
		if err != nil {
			if len(pages) == 0 {
				return nil, fmt.Errorf("%w: %s: %w", ErrInitialFetch, threadURL, err)
			}
			w.logger.Warn("continuation fetch failed, keeping partial thread",
				"url", next, "page", len(pages), "error", err)
			return pages, nil
		}
		pages = append(pages, page)

		if page.Doc.Find(terminalSelector).Length() > 0 {
			return pages, nil
		}

		href, ok := page.Doc.Find(moreLinkSelector).Last().Attr("href")
		if !ok || href == "" {
			w.logger.Debug("no continuation link, thread ends here", "url", next, "page", len(pages)-1)
			return pages, nil
		}

		resolved, err := w.resolve(href)
		if err != nil {
			w.logger.Warn("unusable continuation link", "url", next, "href", href, "error", err)
			return pages, nil
		}
		if seen[resolved] {
			w.logger.Warn("continuation loops back to a fetched page", "url", resolved)
			return pages, nil
		}
		next = resolved
	}

	w.logger.Warn("page limit reached, thread may be truncated", "url", threadURL, "max_pages", w.maxPages)
	return pages, nil
}

func (w *Walker) fetchPage(ctx context.Context, pageURL string) (Page, error) {
	resp, err := w.getter.Get(ctx, pageURL)
	if err != nil {
		return Page{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse page: %w", err)
	}
	w.logger.Debug("fetched thread page", "url", pageURL, "size", len(resp.Body))
	return Page{URL: pageURL, Doc: doc}, nil
}

func (w *Walker) resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return w.origin.ResolveReference(ref).String(), nil
}
