package webimport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/url-importer/models"
	"github.com/dtnitsch/url-importer/pkg/fetcher"
	"github.com/dtnitsch/url-importer/pkg/vault"
)

const articleURL = "https://example.com/posts/walking"

const articleHTML = `<!DOCTYPE html>
<html lang="en">
<head><title>Walking the Thread</title></head>
<body>
<article>
<h1>Walking the Thread</h1>
<p>Threads on social sites are often split across many pages, and reading them in order takes a lot of clicking. This article explains how an importer can follow the continuation links one after another until it reaches the end of the conversation.</p>
<p>Each page carries a link to the next batch of replies. The importer always picks the last such link on the page, because earlier links point at side conversations that are not part of the author's chain.</p>
<p>With these rules the walk is linear, bounded and easy to test with a handful of fixture pages served from memory.</p>
</article>
</body>
</html>`

type postCall struct {
	url         string
	contentType string
	body        []byte
	headers     map[string]string
}

type fakeClient struct {
	pages    map[string]string
	response string
	gets     []string
	posts    []postCall
}

func (f *fakeClient) Get(_ context.Context, u string) (*fetcher.Response, error) {
	f.gets = append(f.gets, u)
	body, ok := f.pages[u]
	if !ok {
		return nil, &fetcher.HTTPError{StatusCode: http.StatusNotFound, URL: u}
	}
	return &fetcher.Response{URL: u, StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

func (f *fakeClient) Post(_ context.Context, u, contentType string, body []byte, headers map[string]string) (*fetcher.Response, error) {
	f.posts = append(f.posts, postCall{url: u, contentType: contentType, body: body, headers: headers})
	return &fetcher.Response{URL: u, StatusCode: http.StatusOK, Body: []byte(f.response)}, nil
}

func setupTestImporter(t *testing.T, client Client, cfg Config) (*Importer, *vault.FS) {
	t.Helper()
	v, err := vault.NewFS(t.TempDir(), io.Discard, "")
	if err != nil {
		t.Fatalf("failed to create vault: %v", err)
	}
	im := NewImporter(client, v, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	im.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return im, v
}

func apiResponse(t *testing.T, content, filename string) string {
	t.Helper()
	inner, err := json.Marshal(apiDocument{Content: content, Filename: filename})
	if err != nil {
		t.Fatal(err)
	}
	outer, err := json.Marshal(apiEnvelope{Body: string(inner)})
	if err != nil {
		t.Fatal(err)
	}
	return string(outer)
}

func TestImport_API(t *testing.T) {
	client := &fakeClient{}
	client.response = apiResponse(t, "# converted", "Walking.md")
	im, v := setupTestImporter(t, client, Config{APIEndpoint: "https://api.test/convert", APIKey: "secret", Folder: "Clippings"})

	result, err := im.Import(context.Background(), Request{URL: articleURL, Title: "Walking"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Status != models.StatusImported {
		t.Errorf("Status = %s, want %s", result.Status, models.StatusImported)
	}
	if result.DocumentPath != "Clippings/Walking.md" {
		t.Errorf("DocumentPath = %q", result.DocumentPath)
	}

	if len(client.posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(client.posts))
	}
	call := client.posts[0]
	if call.headers["x-api-key"] != "secret" {
		t.Errorf("x-api-key = %q", call.headers["x-api-key"])
	}
	if call.contentType != "application/json" {
		t.Errorf("content type = %q", call.contentType)
	}

	var sent map[string]any
	if err := json.Unmarshal(call.body, &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if sent["created"] != "2024-01-02T03:04:05Z" {
		t.Errorf("created = %v", sent["created"])
	}
	if sent["title"] != "Walking" || sent["url"] != articleURL {
		t.Errorf("body = %v", sent)
	}
	if _, ok := sent["author"]; ok {
		t.Error("empty author was sent")
	}

	data, err := os.ReadFile(filepath.Join(v.Root(), "Clippings", "Walking.md"))
	if err != nil {
		t.Fatalf("document not written: %v", err)
	}
	if string(data) != "# converted" {
		t.Errorf("document = %q", data)
	}
	if len(client.gets) != 0 {
		t.Errorf("API mode fetched the page directly: %v", client.gets)
	}
}

func TestImport_APIExistingTarget(t *testing.T) {
	client := &fakeClient{}
	client.response = apiResponse(t, "new", "Walking.md")
	im, v := setupTestImporter(t, client, Config{APIEndpoint: "https://api.test/convert"})

	if _, err := v.Create("Walking.md", "old"); err != nil {
		t.Fatal(err)
	}

	result, err := im.Import(context.Background(), Request{URL: articleURL})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Status != models.StatusExisting {
		t.Errorf("Status = %s, want %s", result.Status, models.StatusExisting)
	}
	data, _ := os.ReadFile(filepath.Join(v.Root(), "Walking.md"))
	if string(data) != "old" {
		t.Errorf("existing document was overwritten: %q", data)
	}
}

func TestImport_APIBadResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "oops"},
		{"body not json", `{"body":"oops"}`},
		{"no filename", `{"body":"{\"content\":\"x\"}"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{response: tt.response}
			im, _ := setupTestImporter(t, client, Config{APIEndpoint: "https://api.test/convert"})
			if _, err := im.Import(context.Background(), Request{URL: articleURL}); err == nil {
				t.Error("Import() error = nil, want error")
			}
		})
	}
}

func TestImport_Local(t *testing.T) {
	client := &fakeClient{pages: map[string]string{articleURL: articleHTML}}
	im, v := setupTestImporter(t, client, Config{Folder: "Web/"})

	created := time.Date(2023, 3, 25, 15, 45, 0, 0, time.UTC)
	result, err := im.Import(context.Background(), Request{URL: articleURL, Author: "Jane Doe", Created: created})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.DocumentPath != "Web/Walking the Thread.md" {
		t.Errorf("DocumentPath = %q", result.DocumentPath)
	}

	data, err := os.ReadFile(filepath.Join(v.Root(), "Web", "Walking the Thread.md"))
	if err != nil {
		t.Fatalf("document not written: %v", err)
	}
	doc := string(data)

	wantHeader := "> by Jane Doe\n> date: Mar 25, 2023, 3:45 PM UTC\n> link: " + articleURL + "\n> lang: en\n\n"
	if !strings.HasPrefix(doc, wantHeader) {
		t.Errorf("header = %q, want prefix %q", doc, wantHeader)
	}
	if !strings.Contains(doc, "Each page carries a link") {
		t.Error("article body missing")
	}
}

func TestImport_LocalFetchFailure(t *testing.T) {
	client := &fakeClient{pages: map[string]string{}}
	im, _ := setupTestImporter(t, client, Config{})

	if _, err := im.Import(context.Background(), Request{URL: articleURL}); err == nil {
		t.Error("Import() error = nil, want fetch error")
	}
}

func TestJoinFolder(t *testing.T) {
	tests := []struct {
		folder, name, want string
	}{
		{"", "a.md", "a.md"},
		{"notes", "a.md", "notes/a.md"},
		{"notes/", "a.md", "notes/a.md"},
	}
	for _, tt := range tests {
		if got := JoinFolder(tt.folder, tt.name); got != tt.want {
			t.Errorf("JoinFolder(%q, %q) = %q, want %q", tt.folder, tt.name, got, tt.want)
		}
	}
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Walking the Thread", "Walking the Thread.md"},
		{"a/b: c?", "a b c.md"},
		{"  ", "Untitled.md"},
		{strings.Repeat("x", 150), strings.Repeat("x", maxTitleRunes) + ".md"},
	}
	for _, tt := range tests {
		if got := DocumentName(tt.title); got != tt.want {
			t.Errorf("DocumentName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"The importer follows every continuation link until the conversation ends.", "en"},
		{"Der Importer folgt jedem Link, bis das Gespräch zu Ende ist.", "de"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
