package models

// SpecInstance is a single specification finding reported by the model for
// one fragment. Instances are immutable; downstream stages only aggregate them.
type SpecInstance struct {
	Fragment          Fragment          `json:"fragment"`
	RawName           string            `json:"raw_name"`
	Value             float64           `json:"value"`
	RawValue          string            `json:"raw_value"` // value as reported, preserves "≥ 1000" style text
	Unit              string            `json:"unit"`
	Condition         string            `json:"condition,omitempty"`
	Confidence        float64           `json:"confidence"` // model-reported, in [0,1], never recomputed
	SourceExcerpt     string            `json:"source_excerpt"`
	TranslationStatus TranslationStatus `json:"translation_status"`
}

// CanonicalSpec is the standardized representation of a specification after
// cross-vendor terminology unification. It always references at least one
// contributing instance.
type CanonicalSpec struct {
	StandardName string `json:"standard_name"`
	UnitFamily   string `json:"unit_family,omitempty"`
	// Instances are the contributing findings in deterministic order
	// (locator ordinal, then source file, then raw name). None are discarded
	// by merging.
	Instances []SpecInstance `json:"instances"`

	ResolvedValue      float64 `json:"resolved_value"`
	ResolvedRawValue   string  `json:"resolved_raw_value"`
	ResolvedUnit       string  `json:"resolved_unit"`
	ResolvedCondition  string  `json:"resolved_condition,omitempty"`
	ResolvedConfidence float64 `json:"resolved_confidence"`

	// NonStandard marks specs whose raw name matched neither the canonical
	// table nor any standard name above the similarity threshold.
	NonStandard bool `json:"non_standard,omitempty"`
}

// MappingResult assigns a canonical spec to at most one template slot.
// A nil Slot means the spec is unmatched and goes to the review table.
type MappingResult struct {
	Spec       *CanonicalSpec `json:"spec"`
	Slot       *TemplateSlot  `json:"slot,omitempty"`
	Similarity float64        `json:"similarity"`
}

// Mapped reports whether the spec was assigned a slot.
func (r MappingResult) Mapped() bool { return r.Slot != nil }

// ReferenceRecord binds one contributing instance to its source text and
// locator. One record exists per instance, preserved across merging, so every
// surfaced value has a full audit trail.
type ReferenceRecord struct {
	StandardName      string            `json:"standard_name"`
	RawName           string            `json:"raw_name"`
	RawValue          string            `json:"raw_value"`
	Unit              string            `json:"unit"`
	Condition         string            `json:"condition,omitempty"`
	SourceFile        string            `json:"source_file"`
	Locator           Locator           `json:"locator"`
	OriginalText      string            `json:"original_text"`
	TranslatedText    string            `json:"translated_text"`
	Confidence        float64           `json:"confidence"`
	TranslationStatus TranslationStatus `json:"translation_status"`
	Mapped            bool              `json:"mapped"`
}
