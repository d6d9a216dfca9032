package extract

import (
	"fmt"
	"strings"
)

const promptHeader = `You are an automotive display and cover glass specification analyst.
You must extract specification values from the following document text.`

// terminologyExamples are few-shot hints teaching the model that vendors use
// different names for the same specification.
const terminologyExamples = `IMPORTANT RULES:
1. Extract ONLY specs that match or closely relate to the target specifications above.
2. Different manufacturers may use different terminology for the same specification.
   Map them correctly. Examples:
   - "Leuchtdichte" (DE) = "Luminosité" (FR) = "Luminance" = "Brightness"
   - "Kontrastverhältnis" = "Rapport de contraste" = "Contrast Ratio"
   - "Oberflächenhärte" = "Dureté de surface" = "Surface hardness"
   - "Glasdicke" = "Épaisseur du verre" = "Glass thickness"
   - "Druckspannung" = "Contrainte de compression" = "Compressive Stress"
   - "Transmission" = "Transmittance" = "Cover Glass Transmittance"
   - "Kontaktwinkel" = "Angle de contact" = "Water Contact Angle"
3. Preserve exact numeric values and units from the source text.
4. Include the EXACT source text where each spec was found.
5. Assign a confidence score (0.0 to 1.0) based on match certainty.`

const responseFormat = `Respond with ONLY a JSON array (no markdown, no code blocks). Each element:
{
  "spec_name": "specification name",
  "value": "extracted value with units",
  "unit": "measurement unit",
  "condition": "test condition if any",
  "confidence": 0.95,
  "source_text": "exact original text snippet where this was found"
}

If no matching specs are found, return an empty array: []`

// buildPrompt assembles the fixed instruction template, few-shot terminology
// examples, target spec names, and the fragment text (bounded to maxChars).
func buildPrompt(targetNames []string, text string, maxChars int) string {
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	var names strings.Builder
	for _, n := range targetNames {
		names.WriteString("  - ")
		names.WriteString(n)
		names.WriteByte('\n')
	}
	return fmt.Sprintf(`%s

TARGET SPECIFICATIONS (extract values for these items):
%s
%s

DOCUMENT TEXT:
%s

%s`, promptHeader, names.String(), terminologyExamples, text, responseFormat)
}

// correctivePrompt appends the validation failure to the base prompt so the
// model can repair a malformed response.
func correctivePrompt(base string, validationErr error) string {
	return fmt.Sprintf(`%s

YOUR PREVIOUS RESPONSE WAS INVALID: %v
Respond again with ONLY a valid JSON array in the exact format specified above.`, base, validationErr)
}
