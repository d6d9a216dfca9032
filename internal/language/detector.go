// Package language provides language detection and translation into the
// working language, with caching and retry.
package language

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// langNames maps ISO 639-1 codes to display names used in prompts.
var langNames = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
}

var linguaByCode = map[string]lingua.Language{
	"en": lingua.English,
	"de": lingua.German,
	"fr": lingua.French,
	"es": lingua.Spanish,
	"it": lingua.Italian,
	"ja": lingua.Japanese,
	"ko": lingua.Korean,
	"zh": lingua.Chinese,
}

// Detector detects the language of fragment text within a configured
// candidate set. Text shorter than minLength is assumed to be in the working
// language, since detection is unreliable on short strings.
type Detector struct {
	detector  lingua.LanguageDetector
	working   string
	minLength int
}

// NewDetector builds a detector for the given ISO 639-1 candidate codes.
// Unknown codes are ignored; the working language is always a candidate.
func NewDetector(working string, candidates []string, minLength int) *Detector {
	langs := make([]lingua.Language, 0, len(candidates)+1)
	seen := make(map[lingua.Language]bool)
	for _, code := range append([]string{working}, candidates...) {
		if l, ok := linguaByCode[strings.ToLower(code)]; ok && !seen[l] {
			langs = append(langs, l)
			seen[l] = true
		}
	}
	return &Detector{
		detector:  lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build(),
		working:   strings.ToLower(working),
		minLength: minLength,
	}
}

// Detect returns the ISO 639-1 code of the text's language. It falls back to
// the working language when the text is too short or detection fails.
func (d *Detector) Detect(text string) string {
	clean := strings.TrimSpace(text)
	if len(clean) < d.minLength {
		return d.working
	}
	lang, ok := d.detector.DetectLanguageOf(clean)
	if !ok {
		return d.working
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// Name returns the human-readable name for an ISO 639-1 code.
func Name(code string) string {
	if name, ok := langNames[strings.ToLower(code)]; ok {
		return name
	}
	return "Unknown (" + code + ")"
}
