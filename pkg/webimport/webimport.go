// Package webimport saves arbitrary web pages into the vault, either through
// a remote conversion API or by extracting the article locally.
package webimport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dtnitsch/url-importer/models"
	"github.com/dtnitsch/url-importer/pkg/fetcher"
	"github.com/dtnitsch/url-importer/pkg/parser"
	"github.com/dtnitsch/url-importer/pkg/vault"
)

const (
	headerDateLayout = "Jan 02, 2006, 3:04 PM MST"
	maxTitleRunes    = 100
)

var unsafeNameChars = regexp.MustCompile(`[\\/:*?"<>|\r\n\t#^\[\]]+`)

// Client is the HTTP capability needed by both modes.
type Client interface {
	fetcher.Getter
	Post(ctx context.Context, url, contentType string, body []byte, headers map[string]string) (*fetcher.Response, error)
}

// Request carries the import form values. Empty Title or Author leave the
// choice to the converter. A zero Created means now.
type Request struct {
	URL     string
	Title   string
	Author  string
	Created time.Time
}

type Config struct {
	APIEndpoint string
	APIKey      string
	Folder      string
}

type Importer struct {
	client Client
	vault  vault.Vault
	parser *parser.Parser
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewImporter(client Client, v vault.Vault, cfg Config, logger *slog.Logger) *Importer {
	return &Importer{
		client: client,
		vault:  v,
		parser: &parser.Parser{},
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Import converts req.URL into a document. API mode is used whenever an
// endpoint is configured.
func (im *Importer) Import(ctx context.Context, req Request) (*models.ImportResult, error) {
	if im.cfg.APIEndpoint != "" {
		return im.importViaAPI(ctx, req)
	}
	return im.importLocal(ctx, req)
}

type apiRequest struct {
	Title   string `json:"title,omitempty"`
	Author  string `json:"author,omitempty"`
	Created string `json:"created"`
	URL     string `json:"url"`
}

type apiEnvelope struct {
	Body string `json:"body"`
}

type apiDocument struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

func (im *Importer) importViaAPI(ctx context.Context, req Request) (*models.ImportResult, error) {
	created := req.Created
	if created.IsZero() {
		created = im.now()
	}

	payload, err := json.Marshal(apiRequest{
		Title:   req.Title,
		Author:  req.Author,
		Created: created.UTC().Format(time.RFC3339),
		URL:     req.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := im.client.Post(ctx, im.cfg.APIEndpoint, "application/json", payload,
		map[string]string{"x-api-key": im.cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("conversion API request failed: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}
	var doc apiDocument
	if err := json.Unmarshal([]byte(envelope.Body), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode API document: %w", err)
	}
	if doc.Filename == "" {
		return nil, errors.New("conversion API returned no filename")
	}

	im.logger.Debug("conversion API responded", "url", req.URL, "filename", doc.Filename)
	return im.save(req.URL, JoinFolder(im.cfg.Folder, doc.Filename), doc.Content)
}

func (im *Importer) importLocal(ctx context.Context, req Request) (*models.ImportResult, error) {
	resp, err := im.client.Get(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", req.URL, err)
	}

	page, err := im.parser.ParseToStructured(req.URL, resp.Text())
	if err != nil {
		return nil, err
	}

	title := firstNonEmpty(req.Title, page.Title, hostOf(req.URL))
	author := firstNonEmpty(req.Author, page.Author)

	created := req.Created
	if created.IsZero() && page.Published != nil {
		created = *page.Published
	}
	if created.IsZero() {
		created = im.now()
	}

	body := page.ToMarkdown()
	lang := DetectLanguage(page.ToPlainText())

	var content strings.Builder
	fmt.Fprintf(&content, "> by %s\n> date: %s\n> link: %s\n> lang: %s\n\n",
		author, created.Format(headerDateLayout), req.URL, lang)
	content.WriteString(body)

	im.logger.Debug("extracted article", "url", req.URL, "blocks", len(page.Content), "lang", lang)
	return im.save(req.URL, JoinFolder(im.cfg.Folder, DocumentName(title)), content.String())
}

func (im *Importer) save(sourceURL, name, content string) (*models.ImportResult, error) {
	result := &models.ImportResult{Kind: models.KindWeb, SourceURL: sourceURL, DocumentPath: name}

	file, err := im.vault.Create(name, content)
	if errors.Is(err, vault.ErrExists) {
		existing, err := im.vault.GetByPath(name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", name, err)
		}
		if err := im.vault.Open(existing); err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		im.logger.Info("page already imported", "url", sourceURL, "path", name)
		result.Status = models.StatusExisting
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := im.vault.Open(file); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	im.logger.Info("page imported", "url", sourceURL, "path", name)
	result.Status = models.StatusImported
	return result, nil
}

// JoinFolder prefixes name with folder, adding a separator when missing.
func JoinFolder(folder, name string) string {
	switch {
	case folder == "":
		return name
	case strings.HasSuffix(folder, "/"):
		return folder + name
	default:
		return folder + "/" + name
	}
}

// DocumentName turns a page title into a safe markdown file name.
func DocumentName(title string) string {
	name := strings.Join(strings.Fields(unsafeNameChars.ReplaceAllString(title, " ")), " ")
	if runes := []rune(name); len(runes) > maxTitleRunes {
		name = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}
	if name == "" {
		name = "Untitled"
	}
	return name + ".md"
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
