// Package mapping reads template slots and assigns canonical specs to them
// by similarity, with deterministic greedy conflict resolution.
package mapping

import (
	"fmt"
	"strings"

	"github.com/specsift/specsift/internal/models"
	"github.com/xuri/excelize/v2"
)

// headerLabels are first-column values recognized as a template header row.
var headerLabels = map[string]bool{
	"specification type": true,
	"spec type":          true,
	"specification":      true,
	"item":               true,
}

// ReadTemplate scans the first sheet of the template workbook for slot
// labels. Column A holds the label, column B receives the value. A template
// that cannot be read or defines no slots is a configuration-level failure.
func ReadTemplate(path string) ([]models.TemplateSlot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("template has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read template sheet %q: %w", sheets[0], err)
	}

	var slots []models.TemplateSlot
	unitColumn := 0
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		label := strings.TrimSpace(row[0])
		if label == "" {
			continue
		}
		if headerLabels[strings.ToLower(label)] {
			// Header row may name a unit column used for expected units.
			for col, cell := range row {
				if strings.EqualFold(strings.TrimSpace(cell), "unit") {
					unitColumn = col
				}
			}
			continue
		}
		cell, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return nil, fmt.Errorf("template row %d: %w", i+1, err)
		}
		slot := models.TemplateSlot{
			Label:       label,
			Cell:        cell,
			Row:         i + 1,
			ValueColumn: 2,
		}
		if unitColumn > 0 && unitColumn < len(row) {
			slot.ExpectedUnit = strings.TrimSpace(row[unitColumn])
		}
		slots = append(slots, slot)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("template %s defines no spec slots", path)
	}
	return slots, nil
}
