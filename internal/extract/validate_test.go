package extract

import (
	"strings"
	"testing"
)

func TestParseFindings_valid(t *testing.T) {
	resp := `[
		{"spec_name": "Luminance", "value": "≥ 1000 cd/m²", "unit": "cd/m²", "condition": "25°C", "confidence": 0.95, "source_text": "Luminance: ≥ 1000 cd/m² (at 25°C)"},
		{"spec_name": "Contrast Ratio", "value": 1500, "unit": "", "confidence": 0.9, "source_text": "Contrast Ratio: 1500:1"}
	]`
	findings, err := parseFindings(resp)
	if err != nil {
		t.Fatalf("parseFindings() error = %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(findings))
	}
	if findings[0].Value != 1000 {
		t.Errorf("Value = %v, want 1000", findings[0].Value)
	}
	if findings[0].RawValue != "≥ 1000 cd/m²" {
		t.Errorf("RawValue = %q", findings[0].RawValue)
	}
	if findings[0].Condition != "25°C" {
		t.Errorf("Condition = %q", findings[0].Condition)
	}
	if findings[1].Value != 1500 {
		t.Errorf("numeric value = %v, want 1500", findings[1].Value)
	}
}

func TestParseFindings_fencedResponse(t *testing.T) {
	resp := "```json\n[{\"spec_name\": \"Transmittance\", \"value\": \"92%\", \"unit\": \"%\", \"confidence\": 0.8, \"source_text\": \"T = 92%\"}]\n```"
	findings, err := parseFindings(resp)
	if err != nil {
		t.Fatalf("parseFindings() error = %v", err)
	}
	if len(findings) != 1 || findings[0].Value != 92 {
		t.Errorf("findings = %+v", findings)
	}
}

func TestParseFindings_emptyArray(t *testing.T) {
	findings, err := parseFindings("[]")
	if err != nil {
		t.Fatalf("parseFindings() error = %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %d, want 0", len(findings))
	}
}

func TestParseFindings_rejections(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want string
	}{
		{"no json", "I could not find any specs.", "no JSON array"},
		{"missing name", `[{"value": "1", "unit": "mm", "confidence": 0.5}]`, "spec_name"},
		{"missing value", `[{"spec_name": "Thickness", "unit": "mm", "confidence": 0.5}]`, "value"},
		{"non-numeric value", `[{"spec_name": "Color", "value": "black", "unit": "", "confidence": 0.5}]`, "numeric"},
		{"missing confidence", `[{"spec_name": "Thickness", "value": "1.1", "unit": "mm"}]`, "confidence"},
		{"confidence out of range", `[{"spec_name": "Thickness", "value": "1.1", "unit": "mm", "confidence": 1.5}]`, "outside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFindings(tt.resp)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParseValue_commaDecimal(t *testing.T) {
	raw, value, err := parseValue([]byte(`"1,5 mm"`))
	if err != nil {
		t.Fatal(err)
	}
	if value != 1.5 {
		t.Errorf("value = %v, want 1.5", value)
	}
	if raw != "1,5 mm" {
		t.Errorf("raw = %q", raw)
	}
}
