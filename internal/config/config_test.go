package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Analyzer.Binary != defaultAnalyzerBinary {
		t.Fatalf("analyzer binary = %q, want default", cfg.Analyzer.Binary)
	}
	if cfg.Analyzer.ListTimeout != defaultListTimeout {
		t.Fatalf("list timeout = %d, want default", cfg.Analyzer.ListTimeout)
	}
	if len(cfg.Discovery.BundleSuffixes) == 0 {
		t.Fatal("expected default bundle suffixes")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[analyzer]
binary = "  myhost  "
list_timeout = 10

[discovery]
bundle_suffixes = ["VST3", ".clap"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Analyzer.Binary != "myhost" {
		t.Fatalf("analyzer binary = %q, want trimmed", cfg.Analyzer.Binary)
	}
	want := []string{".vst3", ".clap"}
	if len(cfg.Discovery.BundleSuffixes) != len(want) {
		t.Fatalf("suffixes = %v, want %v", cfg.Discovery.BundleSuffixes, want)
	}
	for i, suffix := range want {
		if cfg.Discovery.BundleSuffixes[i] != suffix {
			t.Fatalf("suffix[%d] = %q, want %q", i, cfg.Discovery.BundleSuffixes[i], suffix)
		}
	}
}

func TestLoadRejectsInvalidLogFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for bad log format")
	}
}

func TestWriteSampleProducesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[analyzer]") {
		t.Fatalf("sample missing analyzer section: %s", data)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config must load cleanly: %v", err)
	}
}

func TestExpandPathResolvesHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandPath("~/plugins")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "plugins") {
		t.Fatalf("ExpandPath = %q", got)
	}
}
