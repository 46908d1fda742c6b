// Package preflight verifies the host environment before real work:
// external binaries, writable storage, and free disk space.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"fxchain/internal/config"
)

// Result reports one environment check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free-space floor below which processing output is
// likely to fail mid-run.
const minFreeBytes = 256 << 20

// Check runs every environment check and returns the results in display order.
func Check(cfg *config.Config) []Result {
	return []Result{
		checkBinary("Analyzer", cfg.Analyzer.Binary, false),
		checkBinary("Player", cfg.Player.Binary, true),
		checkDataDir(cfg),
		checkFreeSpace(cfg),
	}
}

// Passed reports whether every check succeeded.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func checkBinary(name, command string, optional bool) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		if optional {
			return Result{Name: name, Passed: true, Detail: "not configured (optional)"}
		}
		return Result{Name: name, Detail: "binary not configured"}
	}
	if _, err := exec.LookPath(command); err != nil {
		if optional {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("binary %q not found (optional)", command)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Result{Name: name, Passed: true, Detail: command}
}

func checkDataDir(cfg *config.Config) Result {
	const name = "Data directory"
	if err := cfg.EnsureDirectories(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	probe := filepath.Join(cfg.Paths.DataDir, ".preflight")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not writable: %v", err)}
	}
	_ = os.Remove(probe)
	return Result{Name: name, Passed: true, Detail: cfg.Paths.DataDir}
}

func checkFreeSpace(cfg *config.Config) Result {
	const name = "Free space"
	var stat unix.Statfs_t
	if err := unix.Statfs(cfg.Paths.DataDir, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs: %v", err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%d MiB available", free>>20)
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " (low)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
