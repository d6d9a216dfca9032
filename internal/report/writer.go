// Package report assembles the output workbook: the filled template, a
// reference sheet with the full audit trail, and a review sheet for
// unmatched specifications.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/specsift/specsift/internal/models"
	"github.com/specsift/specsift/pkg/utils"
)

const (
	summarySheet   = "Spec Summary"
	referenceSheet = "Reference"
	unmatchedSheet = "Unmatched"
	runInfoSheet   = "Run Info"

	commentAuthor = "specsift"

	// Fill colors per confidence band.
	colorHigh   = "C6EFCE" // green, confidence >= 0.8
	colorMedium = "FFEB9C" // yellow, confidence >= 0.5
	colorLow    = "FFC7CE" // red, below 0.5

	headerBlue   = "4472C4"
	headerOrange = "ED7D31"
)

// RunStats carries pipeline counters for the Run Info sheet.
type RunStats struct {
	RunID               string
	StartedAt           time.Time
	Duration            time.Duration
	FilesParsed         int
	FilesSkipped        int
	FilesFiltered       int
	Fragments           int
	Translated          int
	TranslationFailures int
	ExtractionFailures  int
	Instances           int
	Mapped              int
	Unmatched           int
}

// Writer fills a copy of the Excel template and appends the audit sheets.
type Writer struct {
	templatePath string
	logger       *zap.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger used by the writer.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWriter returns a writer that reads the template at templatePath.
func NewWriter(templatePath string, opts ...Option) *Writer {
	w := &Writer{
		templatePath: templatePath,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write produces the output workbook at outPath. The template's first sheet
// becomes "Spec Summary" with mapped values filled in; Reference and
// Unmatched sheets are appended, then Run Info with the pipeline counters.
func (w *Writer) Write(outPath string, results []models.MappingResult, records []models.ReferenceRecord, stats RunStats) error {
	f, err := excelize.OpenFile(w.templatePath)
	if err != nil {
		return fmt.Errorf("failed to open template %s: %w", w.templatePath, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return fmt.Errorf("template %s has no sheets", w.templatePath)
	}
	if sheet != summarySheet {
		if err := f.SetSheetName(sheet, summarySheet); err != nil {
			return fmt.Errorf("failed to rename template sheet: %w", err)
		}
	}

	mapped := 0
	for _, res := range results {
		if !res.Mapped() {
			continue
		}
		if err := w.writeMappedValue(f, res); err != nil {
			return err
		}
		mapped++
	}

	if err := w.writeReferenceSheet(f, records); err != nil {
		return err
	}
	if err := w.writeUnmatchedSheet(f, unmatchedSpecs(results)); err != nil {
		return err
	}
	if err := w.writeRunInfoSheet(f, stats); err != nil {
		return err
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("failed to save output %s: %w", outPath, err)
	}
	w.logger.Info("output workbook written",
		zap.String("path", outPath),
		zap.Int("mapped", mapped),
		zap.Int("references", len(records)))
	return nil
}

// writeMappedValue fills one template slot with the resolved value, colors it
// by confidence band, and attaches a comment carrying the source reference.
func (w *Writer) writeMappedValue(f *excelize.File, res models.MappingResult) error {
	spec, slot := res.Spec, res.Slot
	if err := f.SetCellValue(summarySheet, slot.Cell, displayValue(spec)); err != nil {
		return fmt.Errorf("failed to write %s at %s: %w", spec.StandardName, slot.Cell, err)
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{confidenceColor(spec.ResolvedConfidence)}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create confidence style: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, slot.Cell, slot.Cell, styleID); err != nil {
		return fmt.Errorf("failed to style %s: %w", slot.Cell, err)
	}

	inst := resolvedInstance(spec)
	comment := fmt.Sprintf("Source: %s\nLocation: %s\nOriginal: %s\nConfidence: %.0f%%",
		inst.Fragment.SourceFile,
		inst.Fragment.Locator.Label,
		utils.Truncate(sourceText(inst), 200),
		spec.ResolvedConfidence*100)
	if err := f.AddComment(summarySheet, excelize.Comment{
		Cell:      slot.Cell,
		Author:    commentAuthor,
		Paragraph: []excelize.RichTextRun{{Text: comment}},
	}); err != nil {
		return fmt.Errorf("failed to add comment at %s: %w", slot.Cell, err)
	}
	return nil
}

func (w *Writer) writeReferenceSheet(f *excelize.File, records []models.ReferenceRecord) error {
	headers := []string{
		"Spec Name", "Raw Name", "Value", "Unit", "Condition",
		"Source File", "Location", "Original Text", "Translated Text",
		"Confidence", "Status", "Mapped",
	}
	widths := []float64{25, 25, 15, 10, 20, 30, 15, 50, 50, 12, 18, 10}
	if err := w.initSheet(f, referenceSheet, headers, widths, headerBlue); err != nil {
		return err
	}

	for i, rec := range records {
		row := []interface{}{
			rec.StandardName,
			rec.RawName,
			rec.RawValue,
			rec.Unit,
			rec.Condition,
			rec.SourceFile,
			rec.Locator.Label,
			rec.OriginalText,
			rec.TranslatedText,
			fmt.Sprintf("%.0f%%", rec.Confidence*100),
			statusLabel(rec.TranslationStatus),
			yesNo(rec.Mapped),
		}
		if err := writeRow(f, referenceSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeUnmatchedSheet(f *excelize.File, specs []*models.CanonicalSpec) error {
	headers := []string{
		"Spec Name", "Value", "Unit", "Condition",
		"Source File", "Location", "Instances", "Confidence",
	}
	widths := []float64{25, 20, 10, 20, 30, 15, 10, 12}
	if err := w.initSheet(f, unmatchedSheet, headers, widths, headerOrange); err != nil {
		return err
	}

	if len(specs) == 0 {
		return f.SetCellValue(unmatchedSheet, "A2", "No unmatched specifications found.")
	}
	for i, spec := range specs {
		inst := resolvedInstance(spec)
		row := []interface{}{
			spec.StandardName,
			spec.ResolvedRawValue,
			spec.ResolvedUnit,
			spec.ResolvedCondition,
			inst.Fragment.SourceFile,
			inst.Fragment.Locator.Label,
			len(spec.Instances),
			fmt.Sprintf("%.0f%%", spec.ResolvedConfidence*100),
		}
		if err := writeRow(f, unmatchedSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeRunInfoSheet(f *excelize.File, stats RunStats) error {
	if _, err := f.NewSheet(runInfoSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", runInfoSheet, err)
	}
	rows := [][2]interface{}{
		{"Run ID", stats.RunID},
		{"Started", stats.StartedAt.Format(time.RFC3339)},
		{"Duration", stats.Duration.Round(time.Millisecond).String()},
		{"Files parsed", stats.FilesParsed},
		{"Files skipped", stats.FilesSkipped},
		{"Files filtered out", stats.FilesFiltered},
		{"Fragments", stats.Fragments},
		{"Fragments translated", stats.Translated},
		{"Translation failures", stats.TranslationFailures},
		{"Extraction failures", stats.ExtractionFailures},
		{"Spec instances", stats.Instances},
		{"Mapped specs", stats.Mapped},
		{"Unmatched specs", stats.Unmatched},
	}
	for i, kv := range rows {
		if err := f.SetCellValue(runInfoSheet, fmt.Sprintf("A%d", i+1), kv[0]); err != nil {
			return fmt.Errorf("failed to write run info: %w", err)
		}
		if err := f.SetCellValue(runInfoSheet, fmt.Sprintf("B%d", i+1), kv[1]); err != nil {
			return fmt.Errorf("failed to write run info: %w", err)
		}
	}
	if err := f.SetColWidth(runInfoSheet, "A", "A", 22); err != nil {
		return fmt.Errorf("failed to size run info columns: %w", err)
	}
	return f.SetColWidth(runInfoSheet, "B", "B", 40)
}

// initSheet creates a sheet with a styled header row, fixed column widths,
// and the top row frozen.
func (w *Writer) initSheet(f *excelize.File, name string, headers []string, widths []float64, headerColor string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	styleID, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return fmt.Errorf("failed to write header %q: %w", h, err)
		}
		if err := f.SetCellStyle(name, cell, cell, styleID); err != nil {
			return fmt.Errorf("failed to style header %q: %w", h, err)
		}
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to name column %d: %w", i+1, err)
		}
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row on %s: %w", name, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", row, sheet, err)
		}
	}
	return nil
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, s := range sides {
		borders = append(borders, excelize.Border{Type: s, Style: 1, Color: "000000"})
	}
	return borders
}

// displayValue renders the resolved value the way the source reported it,
// appending the unit unless it is already part of the raw value.
func displayValue(spec *models.CanonicalSpec) string {
	raw := strings.TrimSpace(spec.ResolvedRawValue)
	unit := strings.TrimSpace(spec.ResolvedUnit)
	if unit == "" || strings.Contains(raw, unit) {
		return raw
	}
	return raw + " " + unit
}

func confidenceColor(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return colorHigh
	case confidence >= 0.5:
		return colorMedium
	default:
		return colorLow
	}
}

// resolvedInstance returns the instance whose value was promoted during
// merging, falling back to the first contributor.
func resolvedInstance(spec *models.CanonicalSpec) models.SpecInstance {
	for _, inst := range spec.Instances {
		if inst.RawValue == spec.ResolvedRawValue && inst.Confidence == spec.ResolvedConfidence {
			return inst
		}
	}
	return spec.Instances[0]
}

func sourceText(inst models.SpecInstance) string {
	if excerpt := strings.TrimSpace(inst.SourceExcerpt); excerpt != "" {
		return excerpt
	}
	return inst.Fragment.RawText
}

func statusLabel(status models.TranslationStatus) string {
	if status == models.StatusFailed {
		return "TRANSLATION FAILED"
	}
	return string(status)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func unmatchedSpecs(results []models.MappingResult) []*models.CanonicalSpec {
	var specs []*models.CanonicalSpec
	for _, res := range results {
		if res.Spec != nil && !res.Mapped() {
			specs = append(specs, res.Spec)
		}
	}
	return specs
}
