package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fxchain/internal/analyzer"
	"fxchain/internal/logging"
	"fxchain/internal/services"
	"fxchain/internal/session"
)

// Options controls one run.
type Options struct {
	// Input is the starting audio file. Empty falls back to the session's
	// default input; if neither is set the run fails fast.
	Input string
	// Output is the run's final output file. Empty generates a
	// timestamped default next to the input.
	Output string
	// Passes is the number of times the whole chain is applied. Values
	// below 1 mean a single pass.
	Passes int
}

// Result reports what a run did. FailedPass and FailedStage are 1-based
// and zero when the run completed.
type Result struct {
	RunID       string
	Invocations int
	FinalOutput string
	FailedPass  int
	FailedStage int
}

// Engine drives the analyzer's processing contract stage by stage.
type Engine struct {
	processor analyzer.Processor
	logger    *slog.Logger

	// now feeds default output naming; swappable for tests.
	now func() time.Time
}

// New constructs an engine.
func New(processor analyzer.Processor, logger *slog.Logger) *Engine {
	return &Engine{
		processor: processor,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		now:       time.Now,
	}
}

// Run executes the session's pipeline. The session's last-output pointer
// advances at the end of every successful pass, and the session is
// autosaved when the run ends, completed or aborted.
func (e *Engine) Run(ctx context.Context, mgr *session.Manager, opts Options) (Result, error) {
	sess := mgr.Session()
	result := Result{RunID: uuid.NewString()}

	if len(sess.Stages) == 0 {
		return result, services.Wrap(services.ErrValidation, "pipeline", "run", "pipeline is empty", nil)
	}

	input := strings.TrimSpace(opts.Input)
	if input == "" {
		input = strings.TrimSpace(sess.InputPath)
	}
	if input == "" {
		return result, services.Wrap(services.ErrValidation, "pipeline", "run", "no input file: pass one or set it with `in`", nil)
	}

	output := strings.TrimSpace(opts.Output)
	if output == "" {
		output = e.defaultOutputPath(input)
	}

	passes := opts.Passes
	if passes < 1 {
		passes = 1
	}

	logger := e.logger.With(logging.String(logging.FieldRunID, result.RunID))
	logger.Info("run started",
		logging.String("input", input),
		logging.String("output", output),
		logging.Int("passes", passes),
		logging.Int("stages", len(sess.Stages)))

	passInput := input
	for pass := 0; pass < passes; pass++ {
		stageInput := passInput
		for i, stage := range sess.Stages {
			stageOutput := output
			if i < len(sess.Stages)-1 {
				stageOutput = intermediatePath(input, pass, i)
			}

			stageLogger := logger.With(
				logging.Int(logging.FieldPass, pass+1),
				logging.Int(logging.FieldStage, i+1),
				logging.String(logging.FieldPlugin, stage.PluginName))
			stageLogger.Info("stage started",
				logging.String("stage_input", stageInput),
				logging.String("stage_output", stageOutput))

			result.Invocations++
			err := e.processor.Process(ctx, analyzer.ProcessRequest{
				PluginPath: stage.PluginPath,
				InputPath:  stageInput,
				OutputPath: stageOutput,
				Bindings:   stage.Bindings,
			})
			if err != nil {
				result.FailedPass = pass + 1
				result.FailedStage = i + 1
				stageLogger.Error("stage failed, aborting run", logging.Error(err))
				if saveErr := mgr.Autosave(); saveErr != nil {
					stageLogger.Warn("session autosave failed", logging.Error(saveErr))
				}
				return result, services.Wrap(services.ErrExternalTool, "pipeline",
					fmt.Sprintf("pass %d stage %d", pass+1, i+1), stage.PluginName, err)
			}

			stageInput = stageOutput
		}

		// The pass's produced output becomes the next pass's input.
		if err := mgr.SetLastOutput(stageInput); err != nil {
			return result, err
		}
		passInput = stageInput
	}

	result.FinalOutput = output
	logger.Info("run completed",
		logging.Int("invocations", result.Invocations),
		logging.String("output", output))
	return result, nil
}

// defaultOutputPath builds a timestamped output file next to the input.
func (e *Engine) defaultOutputPath(input string) string {
	dir := filepath.Dir(input)
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(filepath.Base(input), ext)
	stamp := e.now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_out_%s%s", base, stamp, ext))
}

// intermediatePath names the file between two stages. Deriving it from the
// run input's base with a pass/step suffix keeps every intermediate
// distinct across passes and steps.
func intermediatePath(input string, pass, stage int) string {
	dir := filepath.Dir(input)
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(filepath.Base(input), ext)
	return filepath.Join(dir, fmt.Sprintf("%s_p%ds%d%s", base, pass+1, stage+1, ext))
}
