// Package pipeline orchestrates parsing, language normalization, extraction,
// canonicalization, template mapping, and output assembly for one run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/specsift/specsift/internal/cache"
	"github.com/specsift/specsift/internal/config"
	"github.com/specsift/specsift/internal/extract"
	"github.com/specsift/specsift/internal/filter"
	"github.com/specsift/specsift/internal/language"
	"github.com/specsift/specsift/internal/llm"
	"github.com/specsift/specsift/internal/mapping"
	"github.com/specsift/specsift/internal/models"
	"github.com/specsift/specsift/internal/parse"
	"github.com/specsift/specsift/internal/provenance"
	"github.com/specsift/specsift/internal/report"
	"github.com/specsift/specsift/internal/terminology"
)

// RunSummary reports what one pipeline run did. Per-fragment failures are
// counted here rather than aborting the run.
type RunSummary struct {
	RunID               string
	StartedAt           time.Time
	Duration            time.Duration
	OutputPath          string
	FilesParsed         int
	FilesSkipped        int
	FilesFiltered       int // parsed but dropped as irrelevant before processing
	Fragments           int
	Translated          int
	TranslationFailures int
	ExtractionFailures  int
	Instances           int
	Mapped              int
	Unmatched           int
}

// Runner wires the pipeline stages together. Stages share one gated LLM
// client so translation and extraction compete for the same request budget.
type Runner struct {
	cfg        *config.Config
	client     llm.Client
	parser     *parse.Parser
	filter     *filter.Filter
	normalizer *language.Normalizer
	engine     *extract.Engine
	table      *terminology.Table
	resolver   *terminology.Resolver
	mapper     *mapping.Mapper
	writer     *report.Writer
	cache      cache.TranslationCache
	logger     *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	client llm.Client
	cache  cache.TranslationCache
	logger *zap.Logger
}

// WithClient replaces the Gemini client. The gate and rate-limit handling
// still wrap the replacement.
func WithClient(c llm.Client) RunnerOption {
	return func(o *runnerOptions) { o.client = c }
}

// WithCache replaces the translation cache.
func WithCache(c cache.TranslationCache) RunnerOption {
	return func(o *runnerOptions) { o.cache = c }
}

// WithLogger sets the logger shared by all stages.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(o *runnerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewRunner builds a runner from configuration. Missing credentials, an
// unreadable template, or a broken terminology file are fatal here, before
// any document is touched.
func NewRunner(cfg *config.Config, opts ...RunnerOption) (*Runner, error) {
	o := &runnerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	inner := o.client
	if inner == nil {
		key := cfg.Gemini.ResolveAPIKey()
		if key == "" {
			return nil, fmt.Errorf("no API key: set gemini.api_key or the %s environment variable", cfg.Gemini.APIKeyEnv)
		}
		var err error
		inner, err = llm.NewGemini(llm.GeminiOptions{
			BaseURL:     cfg.Gemini.BaseURL,
			Model:       cfg.Gemini.Model,
			APIKey:      key,
			Temperature: cfg.Gemini.Temperature,
			Timeout:     time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	}

	retry := llm.RetryConfig{
		MaxAttempts:       cfg.Gemini.MaxRetries,
		BackoffBase:       time.Duration(cfg.Gemini.RetryDelaySeconds * float64(time.Second)),
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
	if retry.MaxAttempts <= 0 {
		retry = llm.DefaultRetryConfig()
	}
	client := llm.Gated(inner, llm.NewGate(cfg.Gemini.RequestsPerMinute), retry, cfg.Gemini.RateLimitCeiling)

	translationCache := o.cache
	if translationCache == nil {
		if cfg.Translation.CacheEnabled && cfg.Translation.CachePath != "" {
			sqlite, err := cache.NewSQLite(cfg.Translation.CachePath)
			if err != nil {
				return nil, fmt.Errorf("failed to open translation cache: %w", err)
			}
			translationCache = sqlite
		} else {
			translationCache = cache.NewMemory()
		}
	}

	table := terminology.NewTable()
	if cfg.Terminology.TableFile != "" {
		if err := table.LoadFile(cfg.Terminology.TableFile); err != nil {
			return nil, fmt.Errorf("failed to load terminology table: %w", err)
		}
	}

	detector := language.NewDetector(cfg.Translation.WorkingLanguage, cfg.Translation.Languages, cfg.Translation.MinDetectLength)

	return &Runner{
		cfg:    cfg,
		client: client,
		parser: parse.NewParser(parse.WithLogger(o.logger)),
		filter: filter.New(client, cfg.Filter.Keywords, filter.WithLogger(o.logger)),
		normalizer: language.NewNormalizer(client, translationCache, detector, retry,
			cfg.Translation.WorkingLanguage, language.WithLogger(o.logger)),
		engine: extract.NewEngine(client, retry,
			extract.WithMaxFragmentChars(cfg.Extraction.MaxFragmentChars),
			extract.WithLogger(o.logger)),
		table:    table,
		resolver: terminology.NewResolver(table, cfg.Terminology.SimilarityThreshold, terminology.WithLogger(o.logger)),
		mapper:   mapping.NewMapper(table, cfg.Mapping.AcceptThreshold, mapping.WithLogger(o.logger)),
		writer:   report.NewWriter(cfg.Paths.TemplateFile, report.WithLogger(o.logger)),
		cache:    translationCache,
		logger:   o.logger,
	}, nil
}

// Close releases the translation cache.
func (r *Runner) Close() error {
	return r.cache.Close()
}

// Run executes one full pipeline pass over the input directory and writes the
// output workbook. Per-fragment translation and extraction failures are
// recorded in the summary and skipped; only setup-level problems abort.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	started := time.Now()
	summary := &RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: started,
	}

	// Template problems are fatal before any LLM call is spent.
	slots, err := mapping.ReadTemplate(r.cfg.Paths.TemplateFile)
	if err != nil {
		return nil, fmt.Errorf("template validation failed: %w", err)
	}

	fragments, skipped, err := r.parser.ParseDir(r.cfg.Paths.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	files := make(map[string]bool)
	for _, frag := range fragments {
		files[frag.SourceFile] = true
	}
	summary.FilesParsed = len(files)
	summary.FilesSkipped = len(skipped)
	summary.Fragments = len(fragments)
	r.logger.Info("parsed input documents",
		zap.Int("files", summary.FilesParsed),
		zap.Int("fragments", summary.Fragments),
		zap.Strings("skipped", skipped))

	fragments, err = r.filterDocuments(ctx, fragments, summary)
	if err != nil {
		return nil, err
	}
	summary.Fragments = len(fragments)

	instances, err := r.processFragments(ctx, fragments, summary)
	if err != nil {
		return nil, err
	}
	summary.Instances = len(instances)

	specs := r.resolver.Resolve(instances)
	results := r.mapper.Map(specs, slots)
	records := provenance.Records(results)
	for _, res := range results {
		if res.Mapped() {
			summary.Mapped++
		} else {
			summary.Unmatched++
		}
	}

	if err := os.MkdirAll(r.cfg.Paths.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	summary.OutputPath = filepath.Join(r.cfg.Paths.OutputDir, outputFilename(started, summary.RunID))
	summary.Duration = time.Since(started)

	stats := report.RunStats{
		RunID:               summary.RunID,
		StartedAt:           summary.StartedAt,
		Duration:            summary.Duration,
		FilesParsed:         summary.FilesParsed,
		FilesSkipped:        summary.FilesSkipped,
		FilesFiltered:       summary.FilesFiltered,
		Fragments:           summary.Fragments,
		Translated:          summary.Translated,
		TranslationFailures: summary.TranslationFailures,
		ExtractionFailures:  summary.ExtractionFailures,
		Instances:           summary.Instances,
		Mapped:              summary.Mapped,
		Unmatched:           summary.Unmatched,
	}
	if err := r.writer.Write(summary.OutputPath, results, records, stats); err != nil {
		return nil, err
	}

	r.logger.Info("pipeline run complete",
		zap.String("run_id", summary.RunID),
		zap.String("output", summary.OutputPath),
		zap.Int("mapped", summary.Mapped),
		zap.Int("unmatched", summary.Unmatched),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// filterDocuments drops whole documents the relevance filter rejects before
// any translation or extraction request is spent on them. Fragments keep
// their original order; only the irrelevant files' fragments are removed.
func (r *Runner) filterDocuments(ctx context.Context, fragments []models.Fragment, summary *RunSummary) ([]models.Fragment, error) {
	byFile := make(map[string][]models.Fragment)
	var order []string
	for _, frag := range fragments {
		if _, seen := byFile[frag.SourceFile]; !seen {
			order = append(order, frag.SourceFile)
		}
		byFile[frag.SourceFile] = append(byFile[frag.SourceFile], frag)
	}

	relevant := make(map[string]bool, len(order))
	for _, file := range order {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled: %w", err)
		}
		ok, reason := r.filter.Relevant(ctx, file, byFile[file])
		relevant[file] = ok
		if !ok {
			summary.FilesFiltered++
			r.logger.Info("document skipped as irrelevant",
				zap.String("file", file),
				zap.String("reason", reason))
		}
	}
	if summary.FilesFiltered == 0 {
		return fragments, nil
	}

	kept := make([]models.Fragment, 0, len(fragments))
	for _, frag := range fragments {
		if relevant[frag.SourceFile] {
			kept = append(kept, frag)
		}
	}
	return kept, nil
}

// processFragments runs translate-then-extract for every fragment on a
// bounded worker pool. Instance order across fragments is not deterministic
// here; the resolver re-establishes total order.
func (r *Runner) processFragments(ctx context.Context, fragments []models.Fragment, summary *RunSummary) ([]models.SpecInstance, error) {
	workers := r.cfg.Extraction.Workers
	if workers <= 0 {
		workers = 1
	}
	targets := r.table.StandardNames()

	jobs := make(chan models.Fragment)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		instances []models.SpecInstance
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for frag := range jobs {
				tf := r.normalizer.Normalize(ctx, frag)
				found, err := r.engine.ExtractFragment(ctx, tf, targets)

				mu.Lock()
				switch tf.Status {
				case models.StatusTranslated:
					summary.Translated++
				case models.StatusFailed:
					summary.TranslationFailures++
				}
				if err != nil {
					summary.ExtractionFailures++
					mu.Unlock()
					r.logger.Warn("fragment extraction failed",
						zap.String("file", frag.SourceFile),
						zap.String("location", frag.Locator.Label),
						zap.Error(err))
					continue
				}
				instances = append(instances, found...)
				mu.Unlock()
			}
		}()
	}

	var cancelled error
dispatch:
	for _, frag := range fragments {
		if cancelled = ctx.Err(); cancelled != nil {
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break dispatch
		case jobs <- frag:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, fmt.Errorf("run cancelled: %w", cancelled)
	}
	return instances, nil
}

func outputFilename(started time.Time, runID string) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("spec_result_%s_%s.xlsx", started.Format("20060102_150405"), short)
}
