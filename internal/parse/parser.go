// Package parse produces locatable text fragments from supplier documents.
// Each supported format yields one fragment per page, slide, or sheet so
// extracted values can be traced back to their exact source location.
package parse

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specsift/specsift/internal/models"
	"go.uber.org/zap"
)

// Parser turns document files into fragments.
type Parser struct {
	extensions map[string]bool
	logger     *zap.Logger // optional; when set, logs per-file events
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets a logger for debug output (files parsed, files skipped).
func WithLogger(l *zap.Logger) ParserOption {
	return func(p *Parser) { p.logger = l }
}

// WithExtensions restricts which file extensions are parsed (with leading dot).
func WithExtensions(exts []string) ParserOption {
	return func(p *Parser) {
		p.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			p.extensions[strings.ToLower(e)] = true
		}
	}
}

// NewParser returns a parser for the default formats (.pdf, .pptx, .xlsx, .txt, .md).
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		extensions: map[string]bool{".pdf": true, ".pptx": true, ".xlsx": true, ".txt": true, ".md": true},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Supported reports whether the parser handles the file at path.
func (p *Parser) Supported(path string) bool {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

// ParseFile reads the file at path and returns its fragments. Fragments with
// empty text are dropped at the source.
func (p *Parser) ParseFile(path string) ([]models.Fragment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	var frags []models.Fragment
	switch ext {
	case ".pdf":
		frags, err = parsePDF(name, content)
	case ".pptx":
		frags, err = parsePPTX(name, content)
	case ".xlsx":
		frags, err = parseExcel(name, content)
	case ".txt", ".md":
		frags, err = parsePlain(name, content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return nil, err
	}

	out := frags[:0]
	for _, f := range frags {
		if strings.TrimSpace(f.RawText) != "" {
			out = append(out, f)
		}
	}
	if p.logger != nil {
		p.logger.Debug("parsed file", zap.String("file", name), zap.Int("fragments", len(out)))
	}
	return out, nil
}

// ParseDir walks root and parses every supported file in lexical order.
// Per-file parse failures are logged and reported in skipped, never fatal.
func (p *Parser) ParseDir(root string) (fragments []models.Fragment, skipped []string, err error) {
	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && p.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("scan input folder: %w", walkErr)
	}
	sort.Strings(files)

	for _, f := range files {
		frags, parseErr := p.ParseFile(f)
		if parseErr != nil {
			if p.logger != nil {
				p.logger.Warn("skipping unparseable file", zap.String("file", f), zap.Error(parseErr))
			}
			skipped = append(skipped, f)
			continue
		}
		fragments = append(fragments, frags...)
	}
	return fragments, skipped, nil
}
