package parse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/specsift/specsift/internal/models"
	"github.com/xuri/excelize/v2"
)

// parseExcel extracts one fragment per worksheet. Rows are joined with tabs
// so label/value pairs stay adjacent for the extraction model.
func parseExcel(sourceFile string, content []byte) ([]models.Fragment, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	frags := make([]models.Fragment, 0, len(sheets))
	for i, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		var buf strings.Builder
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		frags = append(frags, models.Fragment{
			SourceFile: sourceFile,
			Locator:    models.NewLocator(models.LocatorSheet, i+1, sheet),
			RawText:    strings.TrimSpace(buf.String()),
		})
	}
	return frags, nil
}
