package nitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/dtnitsch/url-importer/models"
	"github.com/dtnitsch/url-importer/pkg/fetcher"
	"github.com/dtnitsch/url-importer/pkg/idgen"
	"github.com/dtnitsch/url-importer/pkg/vault"
)

const (
	fallbackIDLength    = 20
	fallbackTitleLength = 20
	leadPostSelector    = ".tweet-content.media-body"
)

// Prefixes rewritten to the scraping origin.
var mirroredPrefixes = []string{
	"https://twitter.com",
	"https://www.twitter.com",
	"https://mobile.twitter.com",
	"https://x.com",
	"https://www.x.com",
}

var unsafeTitleChars = regexp.MustCompile(`[\\/:*?"<>|\r\n\t#^\[\]]+`)

// Config holds the importer's tunables.
type Config struct {
	Origin      string
	AssetNaming string
	MaxPages    int
}

// Importer turns a thread URL into one markdown document plus assets.
type Importer struct {
	getter fetcher.Getter
	vault  vault.Vault
	walker *Walker
	cfg    Config
	logger *slog.Logger
}

func NewImporter(getter fetcher.Getter, v vault.Vault, cfg Config, logger *slog.Logger) (*Importer, error) {
	cfg.Origin = strings.TrimSuffix(cfg.Origin, "/")
	if cfg.AssetNaming == "" {
		cfg.AssetNaming = models.AssetNamingRandom
	}

	walker, err := NewWalker(getter, cfg.Origin, cfg.MaxPages, logger)
	if err != nil {
		return nil, err
	}
	return &Importer{getter: getter, vault: v, walker: walker, cfg: cfg, logger: logger}, nil
}

// Handles reports whether rawURL points at a thread this importer serves.
func (im *Importer) Handles(rawURL string) bool {
	if strings.HasPrefix(rawURL, im.cfg.Origin+"/") {
		return true
	}
	for _, prefix := range mirroredPrefixes {
		if strings.HasPrefix(rawURL, prefix+"/") {
			return true
		}
	}
	return false
}

// NormalizeURL points twitter.com and x.com links at the scraping origin.
func (im *Importer) NormalizeURL(rawURL string) string {
	for _, prefix := range mirroredPrefixes {
		if strings.HasPrefix(rawURL, prefix+"/") {
			return im.cfg.Origin + strings.TrimPrefix(rawURL, prefix)
		}
	}
	return rawURL
}

// Import fetches, renders and writes the thread at rawURL. An existing
// document is opened instead of being rebuilt. An unreachable thread
// returns StatusAborted with a nil error.
func (im *Importer) Import(ctx context.Context, rawURL string) (*models.ImportResult, error) {
	threadURL := im.NormalizeURL(rawURL)
	result := &models.ImportResult{Kind: models.KindThread, SourceURL: threadURL}

	id := ThreadID(threadURL)
	if id != "" {
		result.ThreadID = id
		result.DocumentPath = DocumentName(id, "")
		if done, err := im.openExisting(result); done || err != nil {
			return result, err
		}
	}

	pages, err := im.walker.FetchThread(ctx, threadURL)
	if err != nil {
		if errors.Is(err, ErrInitialFetch) {
			im.logger.Warn("thread unreachable, nothing imported", "url", threadURL, "error", err)
			result.Status = models.StatusAborted
			return result, nil
		}
		return nil, err
	}
	result.PageCount = len(pages)

	if id == "" {
		id = idgen.Generate(fallbackIDLength)
		result.ThreadID = id
		result.DocumentPath = DocumentName(id, leadTitle(pages[0]))
		if done, err := im.openExisting(result); done || err != nil {
			return result, err
		}
	}

	lead := pages[0].Doc
	thread := &Thread{
		ID:         id,
		SourceURL:  threadURL,
		Author:     strings.TrimSpace(lead.Find("a.username").First().Text()),
		Published:  NormalizeDate(strings.ReplaceAll(lead.Find("p.tweet-published").First().Text(), " ·", "")),
		pages:      pages,
		mediaIndex: make(map[string]string),
		origin:     im.cfg.Origin,
		naming:     im.cfg.AssetNaming,
		getter:     im.getter,
		vault:      im.vault,
		logger:     im.logger.With("thread_id", id),
	}

	if err := thread.Extract(ctx); err != nil {
		return nil, fmt.Errorf("failed to extract thread %s: %w", id, err)
	}
	result.Assets = thread.Assets()
	result.Missing = thread.missing

	file, err := im.vault.Create(result.DocumentPath, thread.Document())
	if errors.Is(err, vault.ErrExists) {
		im.logger.Warn("document appeared during import, keeping the existing one", "url", threadURL)
		_, err = im.openExisting(result)
		return result, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write thread %s: %w", id, err)
	}
	if err := im.vault.Open(file); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Path, err)
	}

	result.Status = models.StatusImported
	im.logger.Info("thread imported", "url", threadURL, "thread_id", id,
		"pages", len(pages), "assets", len(result.Assets), "missing", result.Missing)
	return result, nil
}

// openExisting opens result.DocumentPath when it is already in the vault.
func (im *Importer) openExisting(result *models.ImportResult) (bool, error) {
	file, err := im.vault.GetByPath(result.DocumentPath)
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", result.DocumentPath, err)
	}
	if file == nil {
		return false, nil
	}
	if err := im.vault.Open(file); err != nil {
		return false, fmt.Errorf("failed to open %s: %w", file.Path, err)
	}
	result.Status = models.StatusExisting
	im.logger.Info("thread already imported", "url", result.SourceURL, "path", file.Path)
	return true, nil
}

// ThreadID returns the last path segment of threadURL, which is empty for
// URLs ending in a slash.
func ThreadID(threadURL string) string {
	p := threadURL
	if u, err := url.Parse(threadURL); err == nil {
		p = u.Path
	}
	return p[strings.LastIndex(p, "/")+1:]
}

// DocumentName returns the vault path for a thread. A non-empty title is
// used only when the id came from the generator.
func DocumentName(id, title string) string {
	if title != "" {
		return title + ".md"
	}
	return "Tweet - " + id + ".md"
}

func leadTitle(page Page) string {
	text := strings.TrimSpace(page.Doc.Find(leadPostSelector).First().Text())
	text = strings.TrimSpace(unsafeTitleChars.ReplaceAllString(text, " "))
	runes := []rune(text)
	if len(runes) > fallbackTitleLength {
		runes = runes[:fallbackTitleLength]
	}
	return strings.TrimSpace(string(runes))
}
