package models

import (
	"fmt"
	"strings"
	"time"
)

// Page represents the structured content of a single web page.
type Page struct {
	URL       string         `json:"url"`
	Title     string         `json:"title"`
	Author    string         `json:"author,omitempty"`
	Published *time.Time     `json:"published,omitempty"`
	Content   []ContentBlock `json:"content"`
}

type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

type Code struct {
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}

// ContentBlock represents a semantic block of text on a page.
type ContentBlock struct {
	Type  string `json:"type"` // e.g., "h1", "h2", "p", "li", "blockquote"
	Text  string `json:"text"`
	Table *Table `json:"table,omitempty"`
	Code  *Code  `json:"code,omitempty"`
}

// ToPlainText concatenates readable text from all content blocks.
func (p *Page) ToPlainText() string {
	var sb strings.Builder

	for _, block := range p.Content {
		switch block.Type {

		case "table":
			for _, row := range block.Table.Rows {
				sb.WriteString(strings.Join(row, " "))
				sb.WriteString("\n")
			}

		case "code":
			sb.WriteString(block.Code.Content)
			sb.WriteString("\n")

		default:
			sb.WriteString(block.Text)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// ToMarkdown renders the content blocks as markdown, one block per paragraph.
func (p *Page) ToMarkdown() string {
	var sb strings.Builder

	for _, block := range p.Content {
		switch block.Type {
		case "h1", "h2", "h3", "h4":
			level := int(block.Type[1] - '0')
			sb.WriteString(strings.Repeat("#", level) + " " + block.Text + "\n\n")

		case "li":
			sb.WriteString("- " + block.Text + "\n")

		case "blockquote":
			sb.WriteString("> " + block.Text + "\n\n")

		case "code":
			fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", block.Code.Language, block.Code.Content)

		case "table":
			writeMarkdownTable(&sb, block.Table)

		default:
			sb.WriteString(block.Text + "\n\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeMarkdownTable(sb *strings.Builder, t *Table) {
	width := len(t.Headers)
	for _, row := range t.Rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return
	}

	writeRow := func(cells []string) {
		padded := make([]string, width)
		copy(padded, cells)
		sb.WriteString("| " + strings.Join(padded, " | ") + " |\n")
	}

	writeRow(t.Headers)
	sb.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	sb.WriteString("\n")
}
