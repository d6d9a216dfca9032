package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/specsift/specsift/internal/cache"
	"github.com/specsift/specsift/internal/config"
	"github.com/specsift/specsift/internal/llm"
)

var germanFragment = "Die Leuchtdichte des Displays beträgt mindestens 1000 cd/m² bei 25 Grad Celsius Umgebungstemperatur."

const (
	relevanceResponse   = `{"is_relevant": true, "reason": "display luminance specs", "confidence": 0.9}`
	relevanceRejection  = `{"is_relevant": false, "reason": "shipping manifest, no display content", "confidence": 0.85}`
	translationResponse = "The luminance of the display is at least 1000 cd/m² at 25 degrees Celsius ambient temperature."
	extractionResponse  = `[{"spec_name": "Leuchtdichte", "value": "≥ 1000", "unit": "cd/m²", "condition": "at 25°C", "confidence": 0.92, "source_text": "luminance of the display is at least 1000 cd/m²"}]`
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	inputDir := filepath.Join(dir, "input")
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(inputDir, "supplier_a.txt"), []byte(germanFragment), 0644); err != nil {
		t.Fatal(err)
	}

	f := excelize.NewFile()
	rows := [][]string{
		{"Specification Type", "OEM Requirement"},
		{"Luminance", ""},
		{"Contrast Ratio", ""},
	}
	for i, row := range rows {
		for j, val := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue("Sheet1", cell, val); err != nil {
				t.Fatal(err)
			}
		}
	}
	templatePath := filepath.Join(dir, "template.xlsx")
	if err := f.SaveAs(templatePath); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Paths.InputDir = inputDir
	cfg.Paths.TemplateFile = templatePath
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	cfg.Gemini.RetryDelaySeconds = 0.001
	cfg.Gemini.RequestsPerMinute = 0 // no request pacing in tests
	cfg.Translation.Languages = []string{"en", "de"}
	cfg.Extraction.Workers = 1
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	mock := llm.NewMockClient(relevanceResponse, translationResponse, extractionResponse)

	r, err := NewRunner(cfg, WithClient(mock), WithCache(cache.NewMemory()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if summary.FilesParsed != 1 || summary.Fragments != 1 {
		t.Errorf("parsed %d files / %d fragments, want 1/1", summary.FilesParsed, summary.Fragments)
	}
	if summary.Translated != 1 || summary.TranslationFailures != 0 {
		t.Errorf("translated = %d failures = %d", summary.Translated, summary.TranslationFailures)
	}
	if summary.Instances != 1 || summary.Mapped != 1 || summary.Unmatched != 0 {
		t.Errorf("instances/mapped/unmatched = %d/%d/%d, want 1/1/0",
			summary.Instances, summary.Mapped, summary.Unmatched)
	}
	if mock.Calls() != 3 {
		t.Errorf("model calls = %d, want relevance, translation, extraction", mock.Calls())
	}

	out, err := excelize.OpenFile(summary.OutputPath)
	if err != nil {
		t.Fatalf("output workbook missing: %v", err)
	}
	defer out.Close()

	// Leuchtdichte canonicalizes to Luminance and lands in the template slot.
	value, err := out.GetCellValue("Spec Summary", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(value, "1000") || !strings.Contains(value, "cd/m²") {
		t.Errorf("slot B2 = %q, want the resolved luminance value", value)
	}

	original, _ := out.GetCellValue("Reference", "H2")
	if original != germanFragment {
		t.Errorf("reference original text = %q, want the untranslated fragment", original)
	}
	runID, _ := out.GetCellValue("Run Info", "B1")
	if runID != summary.RunID {
		t.Errorf("run info id = %q, want %q", runID, summary.RunID)
	}
}

func TestRunTranslationFailureIsFlaggedNotFatal(t *testing.T) {
	cfg := testConfig(t)
	boom := errors.New("upstream unavailable")
	mock := &llm.MockClient{
		// Relevance check passes, then three failed translation attempts,
		// then extraction succeeds on the original-language text.
		Responses: []string{relevanceResponse, "", "", "", extractionResponse},
		Errs:      []error{nil, boom, boom, boom, nil},
	}

	r, err := NewRunner(cfg, WithClient(mock), WithCache(cache.NewMemory()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.TranslationFailures != 1 {
		t.Errorf("translation failures = %d, want 1", summary.TranslationFailures)
	}
	if summary.Instances != 1 {
		t.Errorf("instances = %d, extraction should still run on original text", summary.Instances)
	}

	out, err := excelize.OpenFile(summary.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	status, _ := out.GetCellValue("Reference", "K2")
	if status != "TRANSLATION FAILED" {
		t.Errorf("reference status = %q, want translation failure flagged", status)
	}
}

func TestRunExtractionFailureSkipsFragment(t *testing.T) {
	cfg := testConfig(t)
	mock := llm.NewMockClient(relevanceResponse, translationResponse, "not json at all")

	r, err := NewRunner(cfg, WithClient(mock), WithCache(cache.NewMemory()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.ExtractionFailures != 1 {
		t.Errorf("extraction failures = %d, want 1", summary.ExtractionFailures)
	}
	if summary.Instances != 0 || summary.Mapped != 0 {
		t.Errorf("instances/mapped = %d/%d, want fragment skipped", summary.Instances, summary.Mapped)
	}
	if summary.OutputPath == "" {
		t.Error("run should still produce an output workbook")
	}
}

func TestRunIrrelevantDocumentSkipped(t *testing.T) {
	cfg := testConfig(t)
	mock := llm.NewMockClient(relevanceRejection)

	r, err := NewRunner(cfg, WithClient(mock), WithCache(cache.NewMemory()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.FilesFiltered != 1 {
		t.Errorf("files filtered = %d, want 1", summary.FilesFiltered)
	}
	if summary.Fragments != 0 || summary.Instances != 0 {
		t.Errorf("fragments/instances = %d/%d, irrelevant document must not be processed",
			summary.Fragments, summary.Instances)
	}
	if mock.Calls() != 1 {
		t.Errorf("model calls = %d, want the relevance check only", mock.Calls())
	}

	out, err := excelize.OpenFile(summary.OutputPath)
	if err != nil {
		t.Fatalf("run should still produce an output workbook: %v", err)
	}
	defer out.Close()
	filtered, _ := out.GetCellValue("Run Info", "B6")
	if filtered != "1" {
		t.Errorf("run info filtered count = %q, want 1", filtered)
	}
}

func TestRunKeywordMismatchSkipsWithoutModelCall(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filter.Keywords = []string{"akustik", "lautsprecher"}
	mock := llm.NewMockClient(relevanceResponse)

	r, err := NewRunner(cfg, WithClient(mock), WithCache(cache.NewMemory()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.FilesFiltered != 1 {
		t.Errorf("files filtered = %d, want 1", summary.FilesFiltered)
	}
	if mock.Calls() != 0 {
		t.Errorf("model calls = %d, keyword miss must not spend a request", mock.Calls())
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	r, err := NewRunner(cfg, WithClient(llm.NewMockClient("x")), WithCache(cache.NewMemory()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRunMissingTemplateIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.TemplateFile = filepath.Join(t.TempDir(), "nope.xlsx")

	r, err := NewRunner(cfg, WithClient(llm.NewMockClient("x")), WithCache(cache.NewMemory()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.Run(context.Background()); err == nil {
		t.Error("unreadable template must abort the run")
	}
}

func TestNewRunnerRequiresAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Gemini.APIKey = ""
	cfg.Gemini.APIKeyEnv = "SPECSIFT_TEST_NO_SUCH_KEY"

	if _, err := NewRunner(cfg); err == nil {
		t.Error("expected error when no API key is configured")
	}
}
