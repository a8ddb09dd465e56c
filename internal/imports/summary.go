package imports

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dtnitsch/url-importer/models"
)

// printSummary writes one line per result and returns the failure count.
func printSummary(w io.Writer, results []Result) int {
	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(w, "FAILED    %s: %v\n", r.URL, r.Error)
			continue
		}
		fmt.Fprintln(w, describe(r))
	}

	if len(results) > 1 {
		fmt.Fprintf(w, "\n%d done, %d failed\n", len(results)-failed, failed)
	}
	return failed
}

func describe(r Result) string {
	res := r.Import
	switch res.Status {
	case models.StatusExisting:
		line := fmt.Sprintf("EXISTING  %s", res.DocumentPath)
		if r.Imports > 0 {
			line += fmt.Sprintf(" (imported %d %s)", r.Imports, plural(r.Imports, "time"))
		}
		return line
	case models.StatusAborted:
		return fmt.Sprintf("ABORTED   %s (could not fetch)", res.SourceURL)
	}

	line := fmt.Sprintf("IMPORTED  %s", res.DocumentPath)
	if res.Kind == models.KindThread {
		var size int64
		for _, a := range res.Assets {
			size += a.SizeBytes
		}
		line += fmt.Sprintf(" (%d %s, %d %s, %s", res.PageCount, plural(res.PageCount, "page"),
			len(res.Assets), plural(len(res.Assets), "asset"), humanize.Bytes(uint64(size)))
		if res.Missing > 0 {
			line += fmt.Sprintf(", %d missing", res.Missing)
		}
		line += ")"
	}
	line += " in " + r.Duration.Round(time.Millisecond).String()
	if r.Imports > 1 {
		line += fmt.Sprintf(", %s import", humanize.Ordinal(r.Imports))
	}
	return line
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
