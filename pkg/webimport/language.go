package webimport

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Languages the detector is built for. Loading every model costs seconds
// and hundreds of megabytes.
var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Japanese,
}

var languageDetector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(detectableLanguages...).
		Build()
})

// DetectLanguage returns the lowercase ISO 639-1 code of text, or "" when
// the language cannot be determined.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lang, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
