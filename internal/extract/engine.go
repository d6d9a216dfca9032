// Package extract issues structured spec-extraction requests against fragment
// text and validates model responses into spec instances.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/specsift/specsift/internal/llm"
	"github.com/specsift/specsift/internal/models"
	"go.uber.org/zap"
)

// Engine extracts spec instances from translated fragments. Model responses
// are treated as untrusted payloads: a response that fails validation is
// never accepted, it triggers a corrective retry instead.
type Engine struct {
	client   llm.Client
	retry    llm.RetryConfig
	maxChars int
	logger   *zap.Logger // optional; when set, logs extraction events
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for debug output (per-fragment extraction counts, retries).
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMaxFragmentChars bounds how much fragment text is sent per request.
func WithMaxFragmentChars(n int) EngineOption {
	return func(e *Engine) { e.maxChars = n }
}

// NewEngine creates an extraction engine. The client should already be gated
// for provider rate limits; rate-limit backoff does not consume this engine's
// malformed-response retry budget.
func NewEngine(client llm.Client, retry llm.RetryConfig, opts ...EngineOption) *Engine {
	e := &Engine{client: client, retry: retry, maxChars: 12000}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFragment extracts all spec instances the model reports for one
// fragment. targetNames guides the model toward the template's vocabulary.
// On exhausted retries the fragment's extraction fails as a whole; the caller
// records it and proceeds with remaining fragments.
func (e *Engine) ExtractFragment(ctx context.Context, tf models.TranslatedFragment, targetNames []string) ([]models.SpecInstance, error) {
	if strings.TrimSpace(tf.Text) == "" {
		return nil, nil
	}

	base := buildPrompt(targetNames, tf.Text, e.maxChars)
	prompt := base

	var lastErr error
	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		resp, err := e.client.Generate(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		} else {
			findings, verr := parseFindings(resp)
			if verr == nil {
				instances := e.toInstances(findings, tf)
				if e.logger != nil {
					e.logger.Debug("extracted specs",
						zap.String("file", tf.Fragment.SourceFile),
						zap.String("locator", tf.Fragment.Locator.Label),
						zap.Int("count", len(instances)),
					)
				}
				return instances, nil
			}
			lastErr = verr
			// Malformed response: ask the model to repair it.
			prompt = correctivePrompt(base, verr)
			if e.logger != nil {
				e.logger.Debug("malformed extraction response, retrying with corrective prompt",
					zap.String("locator", tf.Fragment.Locator.Label),
					zap.Int("attempt", attempt),
					zap.Error(verr),
				)
			}
		}
		if attempt == e.retry.MaxAttempts {
			break
		}
		if err := llm.Sleep(ctx, e.retry.Backoff(attempt)); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("extraction failed after %d attempts for %s %s: %w",
		e.retry.MaxAttempts, tf.Fragment.SourceFile, tf.Fragment.Locator.Label, lastErr)
}

// toInstances converts validated findings into instances, collapsing
// duplicates within the fragment (same raw name and value) to the
// highest-confidence one. First-seen order is preserved.
func (e *Engine) toInstances(findings []finding, tf models.TranslatedFragment) []models.SpecInstance {
	type dedupeKey struct {
		name  string
		value string
	}
	index := make(map[dedupeKey]int)
	instances := make([]models.SpecInstance, 0, len(findings))

	for _, f := range findings {
		key := dedupeKey{name: strings.ToLower(f.SpecName), value: f.RawValue}
		if i, seen := index[key]; seen {
			if f.Confidence > instances[i].Confidence {
				instances[i] = e.instance(f, tf)
			}
			continue
		}
		index[key] = len(instances)
		instances = append(instances, e.instance(f, tf))
	}
	return instances
}

func (e *Engine) instance(f finding, tf models.TranslatedFragment) models.SpecInstance {
	return models.SpecInstance{
		Fragment:          tf.Fragment,
		RawName:           f.SpecName,
		Value:             f.Value,
		RawValue:          f.RawValue,
		Unit:              f.Unit,
		Condition:         f.Condition,
		Confidence:        f.Confidence,
		SourceExcerpt:     f.SourceText,
		TranslationStatus: tf.Status,
	}
}
