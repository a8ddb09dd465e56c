package nitter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FragmentKind classifies a content fragment of a thread page.
type FragmentKind int

const (
	FragmentUnknown FragmentKind = iota
	FragmentThreadPost
	FragmentCardContent
	FragmentQuote
	FragmentStillImage
	FragmentCardImage
	FragmentVideo
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentThreadPost:
		return "thread-post"
	case FragmentCardContent:
		return "card-content"
	case FragmentQuote:
		return "quote"
	case FragmentStillImage:
		return "still-image"
	case FragmentCardImage:
		return "card-image"
	case FragmentVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Fragment is one matched element with its classification.
type Fragment struct {
	Kind FragmentKind
	Sel  *goquery.Selection
}

const (
	mainThreadSelector = ".main-thread"
	replyTrunkSelector = ".after-tweet.thread-line"

	fragmentSelector = "div .tweet-content.media-body, div .still-image, div .attachment, " +
		"div .card-content, div .quote, div .card-image, div video"
)

// TrunkSelector returns the selector for the author's chain on page index.
func TrunkSelector(index int) string {
	if index == 0 {
		return mainThreadSelector
	}
	return replyTrunkSelector
}

// ExtractFragments returns the classified fragments of the trunk of a page,
// in document order.
func ExtractFragments(page Page, index int) ([]Fragment, error) {
	var parts []string
	var outerErr error
	page.Doc.Find(TrunkSelector(index)).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		html, err := goquery.OuterHtml(s)
		if err != nil {
			outerErr = err
			return false
		}
		parts = append(parts, html)
		return true
	})
	if outerErr != nil {
		return nil, fmt.Errorf("failed to render trunk of page %d: %w", index, outerErr)
	}
	if len(parts) == 0 {
		return nil, nil
	}

	trunk, err := goquery.NewDocumentFromReader(strings.NewReader(strings.Join(parts, "\n")))
	if err != nil {
		return nil, fmt.Errorf("failed to parse trunk of page %d: %w", index, err)
	}

	var fragments []Fragment
	trunk.Find(fragmentSelector).Each(func(_ int, s *goquery.Selection) {
		fragments = append(fragments, Fragment{Kind: classify(s), Sel: s})
	})
	return fragments, nil
}

func classify(s *goquery.Selection) FragmentKind {
	switch {
	case s.HasClass("tweet-content") && s.HasClass("media-body"):
		return FragmentThreadPost
	case s.HasClass("card-content"):
		return FragmentCardContent
	case s.HasClass("quote"):
		return FragmentQuote
	case s.HasClass("still-image"):
		return FragmentStillImage
	case s.HasClass("card-image"):
		return FragmentCardImage
	case goquery.NodeName(s) == "video":
		return FragmentVideo
	}
	return FragmentUnknown
}
