package parse

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/specsift/specsift/internal/models"
)

// slidePathPattern matches ppt/slides/slideN.xml inside a .pptx zip and
// captures the 1-based slide number.
var slidePathPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// atTag matches <a:t>text</a:t> or <a:t xml:space="preserve">text</a:t> (and any other attributes).
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// parsePPTX extracts one fragment per slide. PPTX is a ZIP containing
// ppt/slides/slideN.xml (Office Open XML); all <a:t>...</a:t> text nodes of a
// slide form its fragment text.
func parsePPTX(sourceFile string, content []byte) ([]models.Fragment, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PPTX: not a zip: %w", err)
	}

	type slide struct {
		num  int
		text string
	}
	var slides []slide
	for _, f := range zr.File {
		m := slidePathPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open slide %s: %w", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("read slide %s: %w", f.Name, err)
		}
		_ = rc.Close()

		var text strings.Builder
		for _, p := range atTag.FindAllStringSubmatch(buf.String(), -1) {
			if text.Len() > 0 {
				text.WriteByte(' ')
			}
			text.WriteString(strings.TrimSpace(p[1]))
		}
		slides = append(slides, slide{num: num, text: strings.TrimSpace(text.String())})
	}

	// Zip entry order is not guaranteed; order fragments by slide number.
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	frags := make([]models.Fragment, 0, len(slides))
	for _, s := range slides {
		frags = append(frags, models.Fragment{
			SourceFile: sourceFile,
			Locator:    models.NewLocator(models.LocatorSlide, s.num, ""),
			RawText:    s.text,
		})
	}
	return frags, nil
}
