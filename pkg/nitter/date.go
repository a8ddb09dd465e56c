package nitter

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	headerDateLayout = "Jan 02, 2006, 3:04 PM MST"
	quoteDateLayout  = "01/02/2006"
)

// Layouts used by nitter's title attributes, tried before dateparse.
var nitterLayouts = []string{
	"Jan 2, 2006 · 3:04 PM MST",
	"Jan 2, 2006 3:04 PM MST",
}

// NormalizeDate formats a thread's published date for the document header.
// Unparseable input is returned trimmed but otherwise unchanged.
func NormalizeDate(raw string) string {
	return reformat(raw, headerDateLayout)
}

// FormatQuoteDate formats a quoted post's date as MM/DD/YYYY.
func FormatQuoteDate(raw string) string {
	return reformat(raw, quoteDateLayout)
}

func reformat(raw, layout string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, ok := parseDate(raw)
	if !ok {
		return raw
	}
	return t.Format(layout)
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range nitterLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, " ·", ""))
	t, err := dateparse.ParseIn(cleaned, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
