// Package filter screens parsed documents for relevance before the pipeline
// spends translation and extraction requests on them.
package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/specsift/specsift/internal/llm"
	"github.com/specsift/specsift/internal/models"
	"github.com/specsift/specsift/pkg/utils"
)

const (
	// maxSampleFragments bounds how many leading fragments are sampled per document.
	maxSampleFragments = 5
	// maxFragmentSampleChars bounds how much text each sampled fragment contributes.
	maxFragmentSampleChars = 2000
	// maxSampleChars bounds the total sample sent to the model.
	maxSampleChars = 8000
	// minSampleChars is the smallest sample worth analyzing; below it the
	// document is dropped as having no usable text.
	minSampleChars = 50
)

// Filter decides whether a parsed document is worth processing. A cheap
// keyword pre-filter runs first; documents that pass it get one model call
// for a relevance verdict. The model is advisory only: when the call fails
// or the response cannot be parsed, the document is kept, because a false
// drop loses data while a false keep only costs requests.
type Filter struct {
	client   llm.Client
	keywords []string
	logger   *zap.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets a logger for per-document verdicts.
func WithLogger(l *zap.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a document filter. An empty keyword list disables the
// pre-filter: every document goes straight to the model check.
func New(client llm.Client, keywords []string, opts ...Option) *Filter {
	f := &Filter{client: client, keywords: keywords, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// verdict is the model's relevance answer. IsRelevant is a pointer so a
// response that omits the field defaults to relevant rather than false.
type verdict struct {
	IsRelevant *bool   `json:"is_relevant"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// Relevant reports whether the document's fragments look like supplier
// display or cover glass material, with a human-readable reason for the
// Run Info trail.
func (f *Filter) Relevant(ctx context.Context, file string, fragments []models.Fragment) (bool, string) {
	if !f.keywordMatch(fragments) {
		reason := "no filter keywords found in document"
		f.logger.Info("document filtered out by keywords", zap.String("file", file))
		return false, reason
	}

	sample := buildSample(fragments)
	if len(strings.TrimSpace(sample)) < minSampleChars {
		return false, "insufficient text content"
	}

	resp, err := f.client.Generate(ctx, buildPrompt(sample))
	if err != nil {
		f.logger.Warn("relevance check failed, keeping document",
			zap.String("file", file), zap.Error(err))
		return true, "keyword match found (relevance check failed)"
	}

	raw := llm.ExtractJSONObject(resp)
	var v verdict
	if raw == "" || json.Unmarshal([]byte(raw), &v) != nil {
		f.logger.Warn("unparseable relevance response, keeping document",
			zap.String("file", file))
		return true, "keyword match found (relevance check failed)"
	}

	relevant := v.IsRelevant == nil || *v.IsRelevant
	f.logger.Info("document relevance verdict",
		zap.String("file", file),
		zap.Bool("relevant", relevant),
		zap.String("reason", v.Reason),
		zap.Float64("confidence", v.Confidence))
	return relevant, v.Reason
}

// keywordMatch reports whether any configured keyword appears in the
// document text. No keywords means every document passes.
func (f *Filter) keywordMatch(fragments []models.Fragment) bool {
	if len(f.keywords) == 0 {
		return true
	}
	var b strings.Builder
	for _, frag := range fragments {
		b.WriteString(strings.ToLower(frag.RawText))
		b.WriteByte(' ')
	}
	text := b.String()
	for _, kw := range f.keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// buildSample assembles a bounded excerpt of the document's leading
// fragments, each labeled with its locator so the model sees structure.
func buildSample(fragments []models.Fragment) string {
	var b strings.Builder
	for i, frag := range fragments {
		if i >= maxSampleFragments {
			break
		}
		text := frag.RawText
		if len(text) > maxFragmentSampleChars {
			text = text[:utils.TruncateIndex(text, maxFragmentSampleChars)]
		}
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", frag.Locator.Label, text)
	}
	sample := b.String()
	if len(sample) > maxSampleChars {
		sample = sample[:utils.TruncateIndex(sample, maxSampleChars)]
	}
	return sample
}

func buildPrompt(sample string) string {
	return fmt.Sprintf(`You are an automotive display specification analyst.

Analyze the following document content and determine if it contains specifications
related to automotive display or cover glass products.

Look for any of these topics:
- Display specifications (size, resolution, luminance, contrast, etc.)
- Cover glass specifications (thickness, hardness, transmittance, etc.)
- Optical properties (reflectance, haze, color, anti-glare, anti-reflection, etc.)
- Mechanical properties (dimensions, stress, surface profile, etc.)
- Environmental conditions (temperature, humidity, vibration, etc.)
- Touch panel specifications
- Electrical specifications (voltage, power, interface, etc.)

DOCUMENT CONTENT:
%s

Respond with EXACTLY this JSON format (no markdown, no code blocks):
{"is_relevant": true/false, "reason": "brief explanation", "confidence": 0.0-1.0}`, sample)
}
