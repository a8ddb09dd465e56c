package nitter

import (
	"context"
	"errors"
	"testing"
)

const (
	startURL = testOrigin + "/alice/status/1"
	lateURL  = startURL + "?cursor=late"
	goneURL  = startURL + "?cursor=gone"
	page2URL = startURL + "?cursor=2"
	page3URL = startURL + "?cursor=3"
)

func setupTestWalker(t *testing.T, pages map[string]string, maxPages int) (*Walker, *fakeGetter) {
	t.Helper()
	getter := &fakeGetter{pages: pages}
	w, err := NewWalker(getter, testOrigin, maxPages, testLogger())
	if err != nil {
		t.Fatalf("NewWalker() error = %v", err)
	}
	return w, getter
}

func TestFetchThread(t *testing.T) {
	tests := []struct {
		name      string
		pages     map[string]string
		maxPages  int
		wantPages int
		wantCalls []string
	}{
		{
			name:      "terminal marker on first page",
			pages:     map[string]string{startURL: leadPage(post("a")+threadLast, "")},
			wantPages: 1,
			wantCalls: []string{startURL},
		},
		{
			name: "follows the last continuation link",
			pages: map[string]string{
				startURL: leadPage(post("a"), moreLink("/alice/status/1?cursor=early")+moreLink("/alice/status/1?cursor=late")),
				lateURL:  replyPage(post("b")+threadLast, ""),
			},
			wantPages: 2,
			wantCalls: []string{startURL, lateURL},
		},
		{
			name: "three pages in order",
			pages: map[string]string{
				startURL: leadPage(post("a"), moreLink("/alice/status/1?cursor=2")),
				page2URL: replyPage(post("b"), moreLink("/alice/status/1?cursor=3")),
				page3URL: replyPage(post("c")+threadLast, ""),
			},
			wantPages: 3,
			wantCalls: []string{startURL, page2URL, page3URL},
		},
		{
			name:      "no link and no marker stops",
			pages:     map[string]string{startURL: leadPage(post("a"), "")},
			wantPages: 1,
			wantCalls: []string{startURL},
		},
		{
			name:      "failed continuation keeps earlier pages",
			pages:     map[string]string{startURL: leadPage(post("a"), moreLink("/alice/status/1?cursor=gone"))},
			wantPages: 1,
			wantCalls: []string{startURL, goneURL},
		},
		{
			name:      "self link is not fetched twice",
			pages:     map[string]string{startURL: leadPage(post("a"), moreLink("/alice/status/1"))},
			wantPages: 1,
			wantCalls: []string{startURL},
		},
		{
			name: "page limit",
			pages: map[string]string{
				startURL: leadPage(post("a"), moreLink("/alice/status/1?cursor=2")),
				page2URL: replyPage(post("b"), moreLink("/alice/status/1?cursor=3")),
				page3URL: replyPage(post("c")+threadLast, ""),
			},
			maxPages:  2,
			wantPages: 2,
			wantCalls: []string{startURL, page2URL},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, getter := setupTestWalker(t, tt.pages, tt.maxPages)

			pages, err := w.FetchThread(context.Background(), startURL)
			if err != nil {
				t.Fatalf("FetchThread() error = %v", err)
			}
			if len(pages) != tt.wantPages {
				t.Errorf("FetchThread() returned %d pages, want %d", len(pages), tt.wantPages)
			}
			if len(getter.calls) != len(tt.wantCalls) {
				t.Fatalf("fetches = %v, want %v", getter.calls, tt.wantCalls)
			}
			for i := range tt.wantCalls {
				if getter.calls[i] != tt.wantCalls[i] {
					t.Errorf("fetch %d = %q, want %q", i, getter.calls[i], tt.wantCalls[i])
				}
			}
			for i, p := range pages {
				if p.URL != tt.wantCalls[i] {
					t.Errorf("page %d URL = %q, want %q", i, p.URL, tt.wantCalls[i])
				}
			}
		})
	}
}

func TestFetchThread_InitialFailure(t *testing.T) {
	w, _ := setupTestWalker(t, map[string]string{}, 0)

	pages, err := w.FetchThread(context.Background(), startURL)
	if !errors.Is(err, ErrInitialFetch) {
		t.Fatalf("FetchThread() error = %v, want ErrInitialFetch", err)
	}
	if pages != nil {
		t.Errorf("FetchThread() pages = %v, want nil", pages)
	}
}
