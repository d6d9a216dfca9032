// Package models defines core data structures for fragments, extracted specs, and mapping results.
package models

import "fmt"

// LocatorKind identifies what unit of a source document a locator points at.
type LocatorKind string

const (
	LocatorPage  LocatorKind = "page"
	LocatorSlide LocatorKind = "slide"
	LocatorSheet LocatorKind = "sheet"
)

// Locator identifies a unit of source text within a document.
// Ordinal is 1-based and totally orders locators within one file.
type Locator struct {
	Kind    LocatorKind `json:"kind"`
	Label   string      `json:"label"` // e.g. "Page 3", "Slide 5", "Sheet: Optical"
	Ordinal int         `json:"ordinal"`
}

// NewLocator builds a locator with a human-readable label derived from kind and name.
func NewLocator(kind LocatorKind, ordinal int, name string) Locator {
	var label string
	switch kind {
	case LocatorPage:
		label = fmt.Sprintf("Page %d", ordinal)
	case LocatorSlide:
		label = fmt.Sprintf("Slide %d", ordinal)
	case LocatorSheet:
		label = "Sheet: " + name
	default:
		label = fmt.Sprintf("%s %d", kind, ordinal)
	}
	return Locator{Kind: kind, Label: label, Ordinal: ordinal}
}

// Fragment is a locatable unit of source text produced by a parser.
// Fragments are immutable once produced.
type Fragment struct {
	SourceFile string  `json:"source_file"`
	Locator    Locator `json:"locator"`
	RawText    string  `json:"raw_text"`
	Language   string  `json:"language"` // ISO 639-1 code, set by detection
}

// TranslationStatus records the outcome of language normalization for a fragment.
type TranslationStatus string

const (
	// StatusNative means the fragment was already in the working language.
	StatusNative TranslationStatus = "native"
	// StatusTranslated means the fragment was translated successfully.
	StatusTranslated TranslationStatus = "translated"
	// StatusFailed means every translation attempt failed; the original text
	// proceeds downstream flagged for manual follow-up.
	StatusFailed TranslationStatus = "failed"
)

// TranslatedFragment pairs a fragment with its working-language text.
// The original fragment (and its raw text) is always retained.
type TranslatedFragment struct {
	Fragment Fragment          `json:"fragment"`
	Text     string            `json:"text"` // working-language text; equals RawText for native/failed
	Status   TranslationStatus `json:"status"`
}
