package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"fxchain/internal/analyzer"
	"fxchain/internal/logging"
	"fxchain/internal/testsupport"
)

// scriptedExecutor answers analyzer invocations in-process. "list" calls
// emit the canned parameter report and "process"/play calls are recorded.
type scriptedExecutor struct {
	listLines []string
	failAfter int // fail the Nth process call; 0 means never
	calls     [][]string
	processed int
}

func (s *scriptedExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	s.calls = append(s.calls, append([]string{binary}, args...))
	if len(args) > 0 && args[0] == "list" {
		for _, line := range s.listLines {
			onStdout(line)
		}
		return nil
	}
	if len(args) > 0 && args[0] == "process" {
		s.processed++
		if s.failAfter != 0 && s.processed >= s.failAfter {
			return errors.New("exit status 1")
		}
	}
	return nil
}

type shellEnv struct {
	app  *app
	exec *scriptedExecutor
	out  *bytes.Buffer
}

func newShellEnv(t *testing.T) *shellEnv {
	t.Helper()

	root := t.TempDir()
	testsupport.MakeBundle(t, root, "TAL-Reverb-4.vst3")
	cfg := testsupport.NewConfig(t, testsupport.WithRoots(root))
	store := testsupport.MustOpenStore(t, cfg)

	exec := &scriptedExecutor{listLines: []string{
		"0: Gain",
		"    Values: 0 to 10",
		"    Default: 5",
		"1: Mode",
		"    Values: clean, crunch",
		"    Supports text values: true",
	}}
	client, err := analyzer.New(cfg.Analyzer.Binary, cfg.Player.Binary, cfg.ListTimeoutSeconds(),
		analyzer.WithExecutor(exec))
	if err != nil {
		t.Fatalf("analyzer.New: %v", err)
	}

	var out bytes.Buffer
	a := buildApp(cfg, logging.NewNop(), store, client, &out)
	return &shellEnv{app: a, exec: exec, out: &out}
}

func (env *shellEnv) run(t *testing.T, line string) (bool, error) {
	t.Helper()
	return env.app.dispatch(context.Background(), line)
}

func (env *shellEnv) mustRun(t *testing.T, line string) string {
	t.Helper()
	env.out.Reset()
	if _, err := env.run(t, line); err != nil {
		t.Fatalf("dispatch %q: %v", line, err)
	}
	return env.out.String()
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestDispatchScanThenShow(t *testing.T) {
	env := newShellEnv(t)

	out := env.mustRun(t, "scan")
	requireContains(t, out, "scanned 1")

	out = env.mustRun(t, "list")
	requireContains(t, out, "TAL Reverb 4")

	out = env.mustRun(t, "show 1")
	requireContains(t, out, "Gain")
	requireContains(t, out, "clean, crunch")
}

func TestDispatchPipelineLifecycle(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun(t, "scan")

	out := env.mustRun(t, "add 1 Gain:3")
	requireContains(t, out, "added stage 1")

	out = env.mustRun(t, "ls")
	requireContains(t, out, "Gain:3")

	out = env.mustRun(t, "mod 1 Gain:7 Mode:crunch")
	requireContains(t, out, "was: Gain:3")

	out = env.mustRun(t, "rm 1")
	requireContains(t, out, "removed stage 1")

	out = env.mustRun(t, "ls")
	requireContains(t, out, "pipeline is empty")
}

func TestDispatchRejectsOutOfRangeIndex(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun(t, "scan")
	env.mustRun(t, "add 1")

	if _, err := env.run(t, "mod 2 Gain:1"); err == nil {
		t.Fatal("expected out-of-range mod to fail")
	}
	if _, err := env.run(t, "rm 0"); err == nil {
		t.Fatal("expected rm 0 to fail")
	}
	if got := len(env.app.mgr.Session().Stages); got != 1 {
		t.Fatalf("rejected mutations must not change the pipeline, have %d stages", got)
	}
}

func TestDispatchRunChainsStages(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun(t, "scan")
	env.mustRun(t, "add 1 Gain:3")
	env.mustRun(t, "add 1 Mode:crunch")

	input := testsupport.WriteAudioFile(t, filepath.Join(t.TempDir(), "in.wav"))
	output := filepath.Join(filepath.Dir(input), "out.wav")

	out := env.mustRun(t, "run "+input+" "+output)
	requireContains(t, out, "run complete: 2 invocation(s)")
	requireContains(t, out, output)

	if env.app.mgr.Session().LastOutput != output {
		t.Fatalf("last output = %q, want %q", env.app.mgr.Session().LastOutput, output)
	}
}

func TestDispatchRunRecursePasses(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun(t, "scan")
	env.mustRun(t, "add 1")

	input := testsupport.WriteAudioFile(t, filepath.Join(t.TempDir(), "in.wav"))
	output := filepath.Join(filepath.Dir(input), "out.wav")

	env.mustRun(t, "run "+input+" "+output+" --recurse=3")
	if env.exec.processed != 3 {
		t.Fatalf("processed = %d, want 3", env.exec.processed)
	}
}

func TestDispatchRunFailureKeepsLoopAlive(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun(t, "scan")
	env.mustRun(t, "add 1")
	env.exec.failAfter = 1

	input := testsupport.WriteAudioFile(t, filepath.Join(t.TempDir(), "in.wav"))
	exit, err := env.run(t, "run "+input)
	if err == nil {
		t.Fatal("expected run to fail")
	}
	if exit {
		t.Fatal("a failed run must not end the loop")
	}
	if env.app.mgr.Session().LastOutput != "" {
		t.Fatalf("failed first stage must leave last output unset, got %q", env.app.mgr.Session().LastOutput)
	}
}

func TestDispatchInLastAndPlay(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun(t, "scan")
	env.mustRun(t, "add 1")

	if _, err := env.run(t, "in_last"); err == nil {
		t.Fatal("in_last without a prior run must fail")
	}
	if _, err := env.run(t, "play"); err == nil {
		t.Fatal("play without a prior run must fail")
	}

	input := testsupport.WriteAudioFile(t, filepath.Join(t.TempDir(), "in.wav"))
	output := filepath.Join(filepath.Dir(input), "out.wav")
	env.mustRun(t, "run "+input+" "+output)

	out := env.mustRun(t, "in_last")
	requireContains(t, out, output)

	env.mustRun(t, "play")
	last := env.exec.calls[len(env.exec.calls)-1]
	if last[len(last)-1] != output {
		t.Fatalf("play invoked with %v, want final arg %q", last, output)
	}
}

func TestDispatchSaveLoadRoundTrip(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun(t, "scan")
	env.mustRun(t, "add 1 Gain:3")

	env.mustRun(t, "save mix")
	env.mustRun(t, "reset")

	out := env.mustRun(t, "load mix")
	requireContains(t, out, "1 stage(s)")
	if got := env.app.mgr.Session().Stages[0].Bindings[0]; got != "Gain:3" {
		t.Fatalf("restored binding = %q, want Gain:3", got)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	env := newShellEnv(t)

	exit, err := env.run(t, "frobnicate")
	if err == nil {
		t.Fatal("expected unknown command error")
	}
	if exit {
		t.Fatal("unknown command must not end the loop")
	}
	requireContains(t, err.Error(), "unknown command")
}

func TestRunLoopExitsOnExitAndEOF(t *testing.T) {
	env := newShellEnv(t)

	input := strings.NewReader("bogus\nexit\n")
	if err := runLoop(context.Background(), env.app, input, false); err != nil {
		t.Fatalf("runLoop: %v", err)
	}
	requireContains(t, env.out.String(), "error:")

	env.out.Reset()
	if err := runLoop(context.Background(), env.app, strings.NewReader("help\n"), false); err != nil {
		t.Fatalf("runLoop at EOF: %v", err)
	}
	requireContains(t, env.out.String(), "run_pipeline")
}

func TestParseRunArgs(t *testing.T) {
	opts, err := parseRunArgs([]string{"in.wav", "out.wav", "--recurse=2"})
	if err != nil {
		t.Fatalf("parseRunArgs: %v", err)
	}
	if opts.Input != "in.wav" || opts.Output != "out.wav" || opts.Passes != 2 {
		t.Fatalf("unexpected opts: %+v", opts)
	}

	if _, err := parseRunArgs([]string{"--recurse=zero"}); err == nil {
		t.Fatal("expected bad recurse value to fail")
	}
	if _, err := parseRunArgs([]string{"--recurse=0"}); err == nil {
		t.Fatal("expected recurse below 1 to fail")
	}
	if _, err := parseRunArgs([]string{"a", "b", "c"}); err == nil {
		t.Fatal("expected three positionals to fail")
	}
	if _, err := parseRunArgs([]string{"--verbose"}); err == nil {
		t.Fatal("expected unknown flag to fail")
	}
}
