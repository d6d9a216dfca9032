// Package config provides configuration loading and structs for specsift.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	Paths       PathsConfig       `yaml:"paths"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Translation TranslationConfig `yaml:"translation"`
	Filter      FilterConfig      `yaml:"filter"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Mapping     MappingConfig     `yaml:"mapping"`
	Terminology TerminologyConfig `yaml:"terminology"`
	Watch       WatchConfig       `yaml:"watch"`
}

// PathsConfig holds input, template, and output locations.
type PathsConfig struct {
	InputDir     string `yaml:"input_dir"`
	TemplateFile string `yaml:"template_file"`
	OutputDir    string `yaml:"output_dir"`
}

// GeminiConfig holds LLM provider settings.
type GeminiConfig struct {
	APIKey            string  `yaml:"api_key"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	Temperature       float64 `yaml:"temperature"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
	MaxRetries        int     `yaml:"max_retries"`
	RetryDelaySeconds float64 `yaml:"retry_delay_seconds"`
	// RateLimitCeiling bounds how many consecutive rate-limit backoffs one
	// request may absorb before the call escalates to a failure.
	RateLimitCeiling int `yaml:"rate_limit_ceiling"`
}

// ResolveAPIKey returns the configured API key, falling back to the
// environment variable named by api_key_env.
func (g *GeminiConfig) ResolveAPIKey() string {
	if g.APIKey != "" {
		return g.APIKey
	}
	if g.APIKeyEnv != "" {
		return os.Getenv(g.APIKeyEnv)
	}
	return ""
}

// TranslationConfig holds language normalization settings.
type TranslationConfig struct {
	WorkingLanguage string   `yaml:"working_language"`
	Languages       []string `yaml:"languages"` // detection candidates, ISO 639-1
	CacheEnabled    bool     `yaml:"cache_enabled"`
	CachePath       string   `yaml:"cache_path"` // SQLite file for cross-run reuse; empty = in-memory only
	MinDetectLength int      `yaml:"min_detect_length"`
}

// FilterConfig holds document relevance filter settings. Keywords gate the
// cheap pre-filter; an empty list sends every document to the model check.
type FilterConfig struct {
	Keywords []string `yaml:"keywords"`
}

// ExtractionConfig holds spec extraction settings.
type ExtractionConfig struct {
	MaxFragmentChars int `yaml:"max_fragment_chars"`
	Workers          int `yaml:"workers"`
}

// MappingConfig holds template mapping settings.
type MappingConfig struct {
	AcceptThreshold float64 `yaml:"accept_threshold"`
}

// TerminologyConfig holds canonical vocabulary settings.
type TerminologyConfig struct {
	// TableFile optionally extends the built-in canonical table with
	// user-maintained standard names and aliases.
	TableFile           string  `yaml:"table_file"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// WatchConfig holds input directory watch settings.
type WatchConfig struct {
	Extensions []string `yaml:"extensions"`
	Recursive  *bool    `yaml:"recursive"`
	DebounceMS int      `yaml:"debounce_ms"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Paths.InputDir = expandPath(cfg.Paths.InputDir, configDir)
	cfg.Paths.TemplateFile = expandPath(cfg.Paths.TemplateFile, configDir)
	cfg.Paths.OutputDir = expandPath(cfg.Paths.OutputDir, configDir)
	if cfg.Translation.CachePath != "" {
		cfg.Translation.CachePath = expandPath(cfg.Translation.CachePath, configDir)
	}
	if cfg.Terminology.TableFile != "" {
		cfg.Terminology.TableFile = expandPath(cfg.Terminology.TableFile, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
