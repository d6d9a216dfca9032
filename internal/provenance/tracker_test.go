package provenance

import (
	"testing"

	"github.com/specsift/specsift/internal/models"
)

func instance(file string, ordinal int, rawName, rawValue, excerpt, rawText string, status models.TranslationStatus) models.SpecInstance {
	return models.SpecInstance{
		Fragment: models.Fragment{
			SourceFile: file,
			Locator:    models.NewLocator(models.LocatorPage, ordinal, ""),
			RawText:    rawText,
		},
		RawName:           rawName,
		RawValue:          rawValue,
		Unit:              "cd/m²",
		Confidence:        0.9,
		SourceExcerpt:     excerpt,
		TranslationStatus: status,
	}
}

func TestRecordsOnePerInstance(t *testing.T) {
	spec := &models.CanonicalSpec{
		StandardName: "Luminance",
		Instances: []models.SpecInstance{
			instance("a.pdf", 3, "Leuchtdichte", "≥ 1000", "Luminance: ≥ 1000 cd/m²", "Leuchtdichte: ≥ 1000 cd/m²", models.StatusTranslated),
			instance("b.pdf", 1, "Brightness", "1000", "Brightness: 1000 cd/m²", "Brightness: 1000 cd/m²", models.StatusNative),
		},
	}
	results := []models.MappingResult{{Spec: spec, Slot: &models.TemplateSlot{Label: "Luminance", Row: 4}}}

	records := Records(results)
	if len(records) != 2 {
		t.Fatalf("records = %d, want one per instance", len(records))
	}
	for _, rec := range records {
		if rec.StandardName != "Luminance" {
			t.Errorf("StandardName = %q", rec.StandardName)
		}
		if !rec.Mapped {
			t.Error("record should inherit mapped status from the slot assignment")
		}
		if rec.OriginalText == "" {
			t.Error("OriginalText must never be empty")
		}
	}
}

func TestRecordsOriginalTextForTranslatedFragment(t *testing.T) {
	raw := "Leuchtdichte: ≥ 1000 cd/m² (bei 25°C)"
	spec := &models.CanonicalSpec{
		StandardName: "Luminance",
		Instances: []models.SpecInstance{
			instance("supplier.pdf", 3, "Leuchtdichte", "≥ 1000", "Luminance: ≥ 1000 cd/m² (at 25°C)", raw, models.StatusTranslated),
		},
	}
	records := Records([]models.MappingResult{{Spec: spec}})
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0]
	// The excerpt is working-language text, so the original column must carry
	// the untranslated fragment.
	if rec.OriginalText != raw {
		t.Errorf("OriginalText = %q, want raw fragment text", rec.OriginalText)
	}
	if rec.TranslatedText != "Luminance: ≥ 1000 cd/m² (at 25°C)" {
		t.Errorf("TranslatedText = %q", rec.TranslatedText)
	}
	if rec.Mapped {
		t.Error("unmatched spec should yield unmapped records")
	}
}

func TestRecordsNativeExcerptKeptAsOriginal(t *testing.T) {
	raw := "Display panel\nBrightness: 1000 cd/m² typ."
	spec := &models.CanonicalSpec{
		StandardName: "Luminance",
		Instances: []models.SpecInstance{
			instance("sheet.xlsx", 1, "Brightness", "1000", "Brightness: 1000 cd/m² typ.", raw, models.StatusNative),
		},
	}
	records := Records([]models.MappingResult{{Spec: spec}})
	if got := records[0].OriginalText; got != "Brightness: 1000 cd/m² typ." {
		t.Errorf("OriginalText = %q, want the excerpt when it appears verbatim", got)
	}
}

func TestRecordsFallBackToRawTextWhenExcerptMissing(t *testing.T) {
	raw := "Kontrastverhältnis: 1500:1"
	inst := instance("a.pdf", 2, "Kontrastverhältnis", "1500:1", "", raw, models.StatusFailed)
	spec := &models.CanonicalSpec{StandardName: "Contrast Ratio", Instances: []models.SpecInstance{inst}}

	rec := Records([]models.MappingResult{{Spec: spec}})[0]
	if rec.OriginalText != raw || rec.TranslatedText != raw {
		t.Errorf("empty excerpt should fall back to fragment text, got original=%q translated=%q", rec.OriginalText, rec.TranslatedText)
	}
	if rec.TranslationStatus != models.StatusFailed {
		t.Errorf("TranslationStatus = %q", rec.TranslationStatus)
	}
}

func TestRecordsOrdering(t *testing.T) {
	luminance := &models.CanonicalSpec{
		StandardName: "Luminance",
		Instances: []models.SpecInstance{
			instance("b.pdf", 2, "Brightness", "1000", "x", "x", models.StatusNative),
			instance("a.pdf", 5, "Leuchtdichte", "1000", "y", "y", models.StatusTranslated),
		},
	}
	contrast := &models.CanonicalSpec{
		StandardName: "Contrast Ratio",
		Instances: []models.SpecInstance{
			instance("b.pdf", 1, "Contrast", "1500:1", "z", "z", models.StatusNative),
		},
	}
	records := Records([]models.MappingResult{{Spec: luminance}, {Spec: contrast}})
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0].StandardName != "Contrast Ratio" {
		t.Errorf("records[0] = %q, want Contrast Ratio first", records[0].StandardName)
	}
	if records[1].SourceFile != "a.pdf" || records[2].SourceFile != "b.pdf" {
		t.Errorf("luminance records out of order: %q then %q", records[1].SourceFile, records[2].SourceFile)
	}
}
