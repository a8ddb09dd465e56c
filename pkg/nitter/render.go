package nitter

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	anchorPattern    = regexp.MustCompile(`(?s)<a[^>]*>(.*?)</a>`)
	labelLinkPattern = regexp.MustCompile(`(?s)^(.+?)\s*\(([^()]*)\)$`)
)

const quotedAncestors = ".quote-media-container, .quote-text, .quote"

// RenderContent converts fragment markup into markdown text. An empty
// quotePrefix starts a new section; ">" nests every line in a blockquote.
func RenderContent(markup, quotePrefix string) string {
	var b strings.Builder
	if quotePrefix == "" {
		b.WriteString("\n---\n")
	}

	text := anchorPattern.ReplaceAllStringFunc(markup, func(anchor string) string {
		m := anchorPattern.FindStringSubmatch(anchor)
		return rewriteAnchor(m[1])
	})

	b.WriteString(strings.ReplaceAll(text, "\n", "\n"+quotePrefix))
	b.WriteString("\n" + quotePrefix + "\n")
	return b.String()
}

func rewriteAnchor(content string) string {
	if strings.HasPrefix(content, "@") {
		return "**" + content + "**"
	}
	if m := labelLinkPattern.FindStringSubmatch(content); m != nil {
		return "[" + strings.TrimSpace(m[1]) + "](" + m[2] + ")"
	}
	return content
}

// isQuoted reports whether s sits inside quoted content.
func isQuoted(s *goquery.Selection) bool {
	return s.ParentsFiltered(quotedAncestors).Length() > 0
}
