package parser

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/dtnitsch/url-importer/models"
)

const blockSelector = "h1,h2,h3,h4,p,li,table,pre,blockquote"

type Parser struct{}

// ParseToStructured uses go-readability to extract the main article content
// and then parses that clean content into a structured Page.
func (p *Parser) ParseToStructured(rawURL, html string) (*models.Page, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	// Work on the distilled content, not the raw page
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article content: %w", err)
	}

	var content []models.ContentBlock
	doc.Find(blockSelector).Each(func(i int, s *goquery.Selection) {
		tag := goquery.NodeName(s)

		// Paragraphs inside list items and quotes are covered by their parent
		if tag == "p" && s.ParentsFiltered("li,blockquote").Length() > 0 {
			return
		}

		switch tag {
		case "table":
			if table := extractTable(s); table != nil {
				content = append(content, models.ContentBlock{Type: "table", Table: table})
			}

		case "pre":
			if code := extractCodeBlock(s); code != nil {
				content = append(content, models.ContentBlock{Type: "code", Code: code})
			}

		default:
			if text := normalizeText(s.Text()); text != "" {
				content = append(content, models.ContentBlock{Type: tag, Text: text})
			}
		}
	})

	return &models.Page{
		URL:       rawURL,
		Title:     normalizeText(article.Title),
		Author:    normalizeText(article.Byline),
		Published: article.PublishedTime,
		Content:   content,
	}, nil
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

func extractTable(s *goquery.Selection) *models.Table {
	var headers []string
	var rows [][]string

	s.Find("thead tr th").Each(func(i int, th *goquery.Selection) {
		headers = append(headers, normalizeText(th.Text()))
	})

	// Fallback: first row
	if len(headers) == 0 {
		s.Find("tr").First().Find("th,td").Each(func(i int, cell *goquery.Selection) {
			headers = append(headers, normalizeText(cell.Text()))
		})
	}

	s.Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
		var row []string
		tr.Find("td").Each(func(j int, td *goquery.Selection) {
			row = append(row, normalizeText(td.Text()))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})

	if len(headers) == 0 && len(rows) == 0 {
		return nil
	}

	return &models.Table{
		Headers: headers,
		Rows:    rows,
	}
}

func extractCodeBlock(s *goquery.Selection) *models.Code {
	codeSel := s.Find("code")
	if codeSel.Length() == 0 {
		codeSel = s
	}

	code := strings.TrimSpace(codeSel.Text())
	if code == "" {
		return nil
	}

	lang, _ := codeSel.Attr("class")
	lang = strings.TrimPrefix(lang, "language-")

	return &models.Code{
		Language: lang,
		Content:  code,
	}
}
