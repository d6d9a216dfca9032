package language

import (
	"context"
	"fmt"
	"strings"

	"github.com/specsift/specsift/internal/cache"
	"github.com/specsift/specsift/internal/llm"
	"github.com/specsift/specsift/internal/models"
	"go.uber.org/zap"
)

const translatePrompt = `You are a technical document translator specializing in automotive display specifications.

Translate the following %s text to %s.

IMPORTANT RULES:
- Preserve all numeric values, units, and technical terms exactly
- Maintain the original formatting and structure
- Keep measurement units unchanged (mm, cd/m², %%, °C, MPa, etc.)
- Translate technical terms accurately in the automotive display context
- If a term is already in %s, keep it as is
- Do NOT add explanations or notes, just translate

TEXT TO TRANSLATE:
%s

%s TRANSLATION:`

// Normalizer turns fragments into working-language fragments. Successful
// translations are stored in the shared cache; a fragment whose every
// translation attempt fails proceeds downstream with status failed and its
// original text retained.
type Normalizer struct {
	client   llm.Client
	cache    cache.TranslationCache
	detector *Detector
	retry    llm.RetryConfig
	working  string
	logger   *zap.Logger // optional; when set, logs translation events
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithLogger sets a logger for debug output (cache hits, translation failures).
func WithLogger(l *zap.Logger) NormalizerOption {
	return func(n *Normalizer) { n.logger = l }
}

// NewNormalizer creates a normalizer translating into working (ISO 639-1).
func NewNormalizer(client llm.Client, c cache.TranslationCache, detector *Detector, retry llm.RetryConfig, working string, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		client:   client,
		cache:    c,
		detector: detector,
		retry:    retry,
		working:  strings.ToLower(working),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize detects the fragment language and translates when needed.
// The original fragment text is always retained.
func (n *Normalizer) Normalize(ctx context.Context, frag models.Fragment) models.TranslatedFragment {
	frag.Language = n.detector.Detect(frag.RawText)

	if frag.Language == n.working {
		return models.TranslatedFragment{Fragment: frag, Text: frag.RawText, Status: models.StatusNative}
	}

	key := cache.Key(frag.RawText, n.working)
	if cached, ok := n.cache.Get(key); ok {
		if n.logger != nil {
			n.logger.Debug("translation cache hit",
				zap.String("file", frag.SourceFile),
				zap.String("locator", frag.Locator.Label),
			)
		}
		return models.TranslatedFragment{Fragment: frag, Text: cached, Status: models.StatusTranslated}
	}

	translated, err := n.translate(ctx, frag.RawText, frag.Language)
	if err != nil {
		if n.logger != nil {
			n.logger.Warn("translation failed, keeping original text",
				zap.String("file", frag.SourceFile),
				zap.String("locator", frag.Locator.Label),
				zap.String("language", frag.Language),
				zap.Error(err),
			)
		}
		return models.TranslatedFragment{Fragment: frag, Text: frag.RawText, Status: models.StatusFailed}
	}

	if err := n.cache.Put(key, frag.RawText, translated); err != nil && n.logger != nil {
		n.logger.Warn("failed to store translation in cache", zap.Error(err))
	}
	return models.TranslatedFragment{Fragment: frag, Text: translated, Status: models.StatusTranslated}
}

func (n *Normalizer) translate(ctx context.Context, text, sourceLang string) (string, error) {
	prompt := fmt.Sprintf(translatePrompt,
		Name(sourceLang), Name(n.working), Name(n.working), text, strings.ToUpper(Name(n.working)))

	var out string
	err := llm.Do(ctx, n.retry, func() error {
		resp, err := n.client.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		out = strings.TrimSpace(resp)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return out, nil
}
