package models

// TemplateSlot is a labeled cell position in the user-supplied output form.
// Slots are supplied externally and read-only to the pipeline; a slot is
// claimed by at most one canonical spec.
type TemplateSlot struct {
	Label        string `json:"label"`
	Cell         string `json:"cell"` // value cell coordinate, e.g. "B7"
	Row          int    `json:"row"`  // 1-based template row
	ValueColumn  int    `json:"value_column"`
	ExpectedUnit string `json:"expected_unit,omitempty"`
}
