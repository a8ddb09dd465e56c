package nitter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/url-importer/models"
	"github.com/dtnitsch/url-importer/pkg/fetcher"
	"github.com/dtnitsch/url-importer/pkg/vault"
)

// Thread accumulates the markdown document for one import.
type Thread struct {
	ID        string
	SourceURL string
	Author    string
	Published string

	pages      []Page
	text       strings.Builder
	mediaIndex map[string]string
	assets     []models.AssetRecord
	missing    int

	origin string
	naming string
	getter fetcher.Getter
	vault  vault.Vault
	logger *slog.Logger
}

// Header returns the document preamble.
func (t *Thread) Header() string {
	return fmt.Sprintf("> by %s\n> date: %s\n> link: %s\n\n", t.Author, t.Published, t.SourceURL)
}

// Document returns the full markdown written so far.
func (t *Thread) Document() string {
	return t.Header() + t.text.String()
}

// Assets returns the binaries written during extraction.
func (t *Thread) Assets() []models.AssetRecord {
	return t.assets
}

// Extract walks every page in order and appends its fragments.
func (t *Thread) Extract(ctx context.Context) error {
	for i, page := range t.pages {
		fragments, err := ExtractFragments(page, i)
		if err != nil {
			return err
		}
		t.logger.Debug("extracted page", "thread_id", t.ID, "page", i, "fragments", len(fragments))

		for _, f := range fragments {
			if err := t.dispatch(ctx, f); err != nil {
				return err
			}
		}
	}
	t.text.WriteString("\n\n")
	return nil
}

func (t *Thread) dispatch(ctx context.Context, f Fragment) error {
	switch f.Kind {
	case FragmentThreadPost, FragmentCardContent:
		t.text.WriteString(f.Sel.Text() + "\n\n\n")

	case FragmentQuote:
		return t.writeQuote(f.Sel)

	case FragmentStillImage:
		href := firstHref(f.Sel)
		if href == "" {
			t.logger.Debug("still image without link", "thread_id", t.ID)
			return nil
		}
		if isQuoted(f.Sel) {
			t.text.WriteString(">")
		}
		return t.resolveMedia(ctx, MediaRequest{Kind: MediaImage, Source: href, Delimiter: ".", Offset: 3})

	case FragmentCardImage:
		src, _ := f.Sel.Find("img").Attr("src")
		if src == "" {
			t.logger.Debug("card image without source", "thread_id", t.ID)
			return nil
		}
		embed := "\n[![image](%s)](" + cardLink(f.Sel) + ")\n"
		return t.resolveMedia(ctx, MediaRequest{Kind: MediaImage, Source: src, Delimiter: "format%3D", Offset: 3, Embed: embed})

	case FragmentVideo:
		src := videoSource(f.Sel)
		if src == "" {
			t.logger.Debug("video without source", "thread_id", t.ID)
			return nil
		}
		return t.resolveMedia(ctx, MediaRequest{Kind: MediaVideo, Source: src, Delimiter: ".", Offset: 3})
	}
	return nil
}

func (t *Thread) writeQuote(s *goquery.Selection) error {
	row := s.Find("div.tweet-name-row")
	writer := strings.TrimSpace(row.Find("div.fullname-and-username a.username").First().Text())

	dateSpan := row.Find("span.tweet-date").First()
	title, _ := dateSpan.Attr("title")
	if title == "" {
		title, _ = dateSpan.Find("a").Attr("title")
	}

	link := ""
	if href, ok := s.Find("a").First().Attr("href"); ok && href != "" {
		link = t.absoluteURL(href)
	}

	fmt.Fprintf(&t.text, "\n>[**%s**  %s](%s)  \n", writer, FormatQuoteDate(title), link)

	html, err := goquery.OuterHtml(s)
	if err != nil {
		return fmt.Errorf("failed to render quote: %w", err)
	}
	t.text.WriteString(RenderContent(html, ">"))
	return nil
}

func firstHref(s *goquery.Selection) string {
	if href, ok := s.Attr("href"); ok && href != "" {
		return href
	}
	href, _ := s.Find("a[href]").First().Attr("href")
	return href
}

func cardLink(s *goquery.Selection) string {
	if href, ok := s.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	href, _ := s.Closest("a[href]").Attr("href")
	return href
}

func videoSource(s *goquery.Selection) string {
	if src, ok := s.Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := s.Find("source[src]").First().Attr("src"); ok && src != "" {
		return src
	}
	src, _ := s.Attr("data-url")
	return src
}
