package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specsift/specsift/internal/llm"
)

// record mirrors one element of the model's JSON array response. Every field
// is untrusted until validated.
type record struct {
	SpecName   string          `json:"spec_name"`
	Value      json.RawMessage `json:"value"`
	Unit       string          `json:"unit"`
	Condition  string          `json:"condition"`
	Confidence *float64        `json:"confidence"`
	SourceText string          `json:"source_text"`
}

// finding is a validated record with its numeric value resolved.
type finding struct {
	SpecName   string
	Value      float64
	RawValue   string
	Unit       string
	Condition  string
	Confidence float64
	SourceText string
}

// numberPattern matches the first decimal number in a value string, so
// "≥ 1000 cd/m²", "1500:1", and "±0.2" all yield their leading numeric part.
var numberPattern = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// parseFindings validates a raw model response as a list of spec records.
// Any invalid record rejects the whole response; the returned error describes
// the first violation and feeds the corrective retry prompt.
func parseFindings(response string) ([]finding, error) {
	payload := llm.ExtractJSONArray(response)
	if payload == "" {
		return nil, fmt.Errorf("response contains no JSON array")
	}
	var records []record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, fmt.Errorf("response is not a valid JSON array of records: %w", err)
	}

	findings := make([]finding, 0, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.SpecName) == "" {
			return nil, fmt.Errorf("record %d: spec_name is missing", i)
		}
		rawValue, value, err := parseValue(r.Value)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.SpecName, err)
		}
		if r.Confidence == nil {
			return nil, fmt.Errorf("record %d (%s): confidence is missing", i, r.SpecName)
		}
		if *r.Confidence < 0 || *r.Confidence > 1 {
			return nil, fmt.Errorf("record %d (%s): confidence %v outside [0,1]", i, r.SpecName, *r.Confidence)
		}
		findings = append(findings, finding{
			SpecName:   strings.TrimSpace(r.SpecName),
			Value:      value,
			RawValue:   rawValue,
			Unit:       strings.TrimSpace(r.Unit),
			Condition:  strings.TrimSpace(r.Condition),
			Confidence: *r.Confidence,
			SourceText: strings.TrimSpace(r.SourceText),
		})
	}
	return findings, nil
}

// parseValue accepts a JSON number or a numeric-bearing string and returns
// the original representation plus the resolved numeric value.
func parseValue(raw json.RawMessage) (string, float64, error) {
	if len(raw) == 0 {
		return "", 0, fmt.Errorf("value is missing")
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return strconv.FormatFloat(num, 'f', -1, 64), num, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", 0, fmt.Errorf("value is neither a number nor a string")
	}
	s = strings.TrimSpace(s)
	match := numberPattern.FindString(s)
	if match == "" {
		return "", 0, fmt.Errorf("value %q contains no numeric part", s)
	}
	num, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return "", 0, fmt.Errorf("value %q is not numeric: %w", s, err)
	}
	return s, num, nil
}
