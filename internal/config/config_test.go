package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Integration.FuzzyThreshold != 90 || !cfg.Integration.EnableFuzzyVendorMatch {
		t.Fatalf("unexpected integration defaults: %+v", cfg.Integration)
	}
	if len(cfg.Columns.Measures) != 3 {
		t.Fatalf("unexpected measures: %+v", cfg.Columns.Measures)
	}
}

func TestLoad_TomlOverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[integration]
fuzzy_threshold = 80
enable_fuzzy_vendor_match = false

[rules]
subtotal_keywords = ["小計"]

[[rules.vendor_normalize_patterns]]
match = "株式会社"
replace = ""
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("COSTETL_DB_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Integration.FuzzyThreshold != 80 || cfg.Integration.EnableFuzzyVendorMatch {
		t.Fatalf("toml not applied: %+v", cfg.Integration)
	}
	if len(cfg.Rules.SubtotalKeywords) != 1 || cfg.Rules.SubtotalKeywords[0] != "小計" {
		t.Fatalf("unexpected keywords: %v", cfg.Rules.SubtotalKeywords)
	}
	if len(cfg.Rules.VendorNormalizePatterns) != 1 {
		t.Fatalf("unexpected patterns: %v", cfg.Rules.VendorNormalizePatterns)
	}
	if cfg.DB.Path != "/tmp/override.db" {
		t.Fatalf("env override not applied: %s", cfg.DB.Path)
	}
	// 未在文件中出现的段保持默认
	if cfg.Columns.AccountCode != "項目CD" {
		t.Fatalf("unexpected account column: %s", cfg.Columns.AccountCode)
	}
}
