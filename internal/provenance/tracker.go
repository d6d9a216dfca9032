// Package provenance binds every extracted value to its original and
// translated source text so the output is fully auditable.
package provenance

import (
	"sort"
	"strings"

	"github.com/specsift/specsift/internal/models"
)

// Records produces one ReferenceRecord per contributing instance of every
// canonical spec, mapped status inherited from the spec's mapping result.
// Merging never drops a record, and OriginalText is always non-empty.
func Records(results []models.MappingResult) []models.ReferenceRecord {
	var records []models.ReferenceRecord
	for _, res := range results {
		if res.Spec == nil {
			continue
		}
		for _, inst := range res.Spec.Instances {
			records = append(records, record(res.Spec.StandardName, inst, res.Mapped()))
		}
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.StandardName != b.StandardName {
			return strings.ToLower(a.StandardName) < strings.ToLower(b.StandardName)
		}
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}
		if a.Locator.Ordinal != b.Locator.Ordinal {
			return a.Locator.Ordinal < b.Locator.Ordinal
		}
		return a.RawName < b.RawName
	})
	return records
}

func record(standardName string, inst models.SpecInstance, mapped bool) models.ReferenceRecord {
	return models.ReferenceRecord{
		StandardName:      standardName,
		RawName:           inst.RawName,
		RawValue:          inst.RawValue,
		Unit:              inst.Unit,
		Condition:         inst.Condition,
		SourceFile:        inst.Fragment.SourceFile,
		Locator:           inst.Fragment.Locator,
		OriginalText:      originalText(inst),
		TranslatedText:    translatedText(inst),
		Confidence:        inst.Confidence,
		TranslationStatus: inst.TranslationStatus,
		Mapped:            mapped,
	}
}

// originalText returns source-language text for the instance. The model's
// excerpt is in the working language; when it does not literally appear in the
// fragment (i.e. the fragment was translated), the full original fragment text
// is used so the trail never goes empty.
func originalText(inst models.SpecInstance) string {
	excerpt := strings.TrimSpace(inst.SourceExcerpt)
	if excerpt != "" && strings.Contains(inst.Fragment.RawText, excerpt) {
		return excerpt
	}
	return inst.Fragment.RawText
}

// translatedText returns the working-language text the value was read from.
func translatedText(inst models.SpecInstance) string {
	if excerpt := strings.TrimSpace(inst.SourceExcerpt); excerpt != "" {
		return excerpt
	}
	return inst.Fragment.RawText
}
