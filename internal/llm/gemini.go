package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize limits the response body read to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// GeminiOptions configures the Gemini REST client.
type GeminiOptions struct {
	BaseURL     string  // default https://generativelanguage.googleapis.com
	Model       string  // default gemini-2.0-flash
	APIKey      string  // required
	Temperature float64 // 0 uses the endpoint default
	Timeout     time.Duration
}

func (o *GeminiOptions) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if o.Model == "" {
		o.Model = "gemini-2.0-flash"
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
}

// Gemini is a Client for the Google Generative Language API.
type Gemini struct {
	hc     *http.Client
	url    string
	apiKey string
	temp   float64
}

// NewGemini builds a Gemini client. Returns an error when no API key is set.
func NewGemini(opts GeminiOptions) (*Gemini, error) {
	opts.defaults()
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	endpoint := strings.TrimRight(opts.BaseURL, "/") +
		"/v1beta/models/" + url.PathEscape(opts.Model) + ":generateContent"
	return &Gemini{
		hc:     &http.Client{Timeout: opts.Timeout},
		url:    endpoint,
		apiKey: opts.APIKey,
		temp:   opts.Temperature,
	}, nil
}

// Request/response wire types (minimal fields).
type gmPart struct {
	Text string `json:"text"`
}
type gmContent struct {
	Role  string   `json:"role,omitempty"`
	Parts []gmPart `json:"parts"`
}
type gmGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}
type gmRequest struct {
	Contents         []gmContent         `json:"contents"`
	GenerationConfig *gmGenerationConfig `json:"generationConfig,omitempty"`
}
type gmResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt as a single user turn and returns the concatenated
// candidate text. HTTP 429 maps to ErrRateLimited so callers can back off.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := gmRequest{
		Contents: []gmContent{{Role: "user", Parts: []gmPart{{Text: prompt}}}},
	}
	if g.temp > 0 {
		reqBody.GenerationConfig = &gmGenerationConfig{Temperature: g.temp}
	}
	payload, err := json.Marshal(&reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("gemini: %w: %s", ErrRateLimited, strings.TrimSpace(string(body)))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("gemini: upstream %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed gmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	var b strings.Builder
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
