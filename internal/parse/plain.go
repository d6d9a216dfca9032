package parse

import (
	"strings"
	"unicode/utf8"

	"github.com/specsift/specsift/internal/models"
)

// parsePlain returns the whole file as a single page fragment, validating it
// is valid UTF-8. Invalid sequences are replaced with the replacement character.
func parsePlain(sourceFile string, content []byte) ([]models.Fragment, error) {
	text := string(content)
	if !utf8.Valid(content) {
		text = strings.ToValidUTF8(text, "�")
	}
	return []models.Fragment{{
		SourceFile: sourceFile,
		Locator:    models.NewLocator(models.LocatorPage, 1, ""),
		RawText:    text,
	}}, nil
}
