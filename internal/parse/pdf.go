package parse

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/specsift/specsift/internal/models"
)

// parsePDF extracts one fragment per PDF page.
func parsePDF(sourceFile string, content []byte) ([]models.Fragment, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	numPages := r.NumPage()
	frags := make([]models.Fragment, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		frags = append(frags, models.Fragment{
			SourceFile: sourceFile,
			Locator:    models.NewLocator(models.LocatorPage, i, ""),
			RawText:    text,
		})
	}
	return frags, nil
}
