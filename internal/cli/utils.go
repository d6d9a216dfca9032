// Package cli provides CLI output utilities for specsift.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/specsift/specsift/internal/pipeline"
)

// OutputFormat is the format for run summary output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// WriteRunSummary writes a pipeline run summary to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteRunSummary(w io.Writer, summary *pipeline.RunSummary, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	default:
		writeRunSummaryText(w, summary)
		return nil
	}
}

func writeRunSummaryText(w io.Writer, s *pipeline.RunSummary) {
	fmt.Fprintf(w, "\nRun %s finished in %s\n\n", s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Documents:   %d parsed, %d skipped, %d filtered out\n", s.FilesParsed, s.FilesSkipped, s.FilesFiltered)
	fmt.Fprintf(w, "Fragments:   %d (%d translated, %d translation failures)\n",
		s.Fragments, s.Translated, s.TranslationFailures)
	fmt.Fprintf(w, "Extraction:  %d spec instances, %d fragments failed\n",
		s.Instances, s.ExtractionFailures)
	fmt.Fprintf(w, "Mapping:     %d mapped, %d unmatched\n", s.Mapped, s.Unmatched)
	fmt.Fprintf(w, "\nOutput: %s\n", s.OutputPath)
	if s.TranslationFailures > 0 || s.ExtractionFailures > 0 {
		fmt.Fprintln(w, "Some fragments failed; see the Reference sheet for flagged rows.")
	}
}
