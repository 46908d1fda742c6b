package preflight_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fxchain/internal/preflight"
	"fxchain/internal/testsupport"
)

func TestCheckWithStubbedAnalyzer(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "plughost")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	cfg := testsupport.NewConfig(t)
	cfg.Player.Binary = ""

	results := preflight.Check(cfg)
	if !preflight.Passed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
}

func TestCheckFailsForMissingAnalyzer(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAnalyzerBinary("definitely-not-on-path-xyz"))
	cfg.Player.Binary = ""

	results := preflight.Check(cfg)
	if preflight.Passed(results) {
		t.Fatalf("expected analyzer check to fail: %+v", results)
	}
	found := false
	for _, r := range results {
		if r.Name == "Analyzer" {
			found = true
			if r.Passed || !strings.Contains(r.Detail, "not found") {
				t.Fatalf("analyzer result = %+v", r)
			}
		}
	}
	if !found {
		t.Fatal("analyzer check missing from results")
	}
}

func TestMissingPlayerIsOptional(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "plughost")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	cfg := testsupport.NewConfig(t)
	cfg.Player.Binary = "no-such-player-xyz"

	if results := preflight.Check(cfg); !preflight.Passed(results) {
		t.Fatalf("optional player must not fail preflight: %+v", results)
	}
}
