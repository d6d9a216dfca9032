package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Paths.InputDir == "" {
		cfg.Paths.InputDir = "./input_docs"
	}
	if cfg.Paths.TemplateFile == "" {
		cfg.Paths.TemplateFile = "./spec_template.xlsx"
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = "./output"
	}
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Gemini.APIKeyEnv == "" {
		cfg.Gemini.APIKeyEnv = "GOOGLE_API_KEY"
	}
	if cfg.Gemini.Temperature == 0 {
		cfg.Gemini.Temperature = 0.1
	}
	if cfg.Gemini.TimeoutSeconds == 0 {
		cfg.Gemini.TimeoutSeconds = 60
	}
	if cfg.Gemini.RequestsPerMinute == 0 {
		cfg.Gemini.RequestsPerMinute = 30
	}
	if cfg.Gemini.MaxRetries == 0 {
		cfg.Gemini.MaxRetries = 3
	}
	if cfg.Gemini.RetryDelaySeconds == 0 {
		cfg.Gemini.RetryDelaySeconds = 2.0
	}
	if cfg.Gemini.RateLimitCeiling == 0 {
		cfg.Gemini.RateLimitCeiling = 6
	}
	if cfg.Translation.WorkingLanguage == "" {
		cfg.Translation.WorkingLanguage = "en"
	}
	if cfg.Translation.Languages == nil {
		cfg.Translation.Languages = []string{"en", "de", "fr", "es", "it", "ja", "ko", "zh"}
	}
	if cfg.Translation.MinDetectLength == 0 {
		cfg.Translation.MinDetectLength = 20
	}
	if cfg.Extraction.MaxFragmentChars == 0 {
		cfg.Extraction.MaxFragmentChars = 12000
	}
	if cfg.Extraction.Workers == 0 {
		cfg.Extraction.Workers = 4
	}
	if cfg.Mapping.AcceptThreshold == 0 {
		cfg.Mapping.AcceptThreshold = 0.3
	}
	if cfg.Terminology.SimilarityThreshold == 0 {
		cfg.Terminology.SimilarityThreshold = 0.72
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".pptx", ".xlsx", ".txt", ".md"}
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 2000
	}
}
