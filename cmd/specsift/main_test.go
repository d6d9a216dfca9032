package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
paths:
  input_dir: ./docs
  template_file: ./template.xlsx
  output_dir: ./out
gemini:
  api_key: test-key
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, loaded, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != path {
		t.Errorf("loaded = %q, want %q", loaded, path)
	}
	if cfg.Paths.InputDir != filepath.Join(dir, "docs") {
		t.Errorf("InputDir = %q, want expanded relative to config dir", cfg.Paths.InputDir)
	}
	if cfg.Gemini.Model == "" {
		t.Error("defaults were not applied")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}
