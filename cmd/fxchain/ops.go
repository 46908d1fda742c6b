package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"fxchain/internal/catalog"
	"fxchain/internal/pipeline"
	"fxchain/internal/services"
	"fxchain/internal/session"
)

// The ops in this file implement the operator surface shared by the shell
// and the one-shot subcommands. Every op writes human-readable results to
// a.out and returns errors for the caller to classify; none of them
// terminate the process.

func (a *app) cmdScan(ctx context.Context, roots []string) error {
	if len(roots) == 0 {
		roots = a.cfg.Discovery.Roots
	}
	paths := catalog.Discover(roots, a.cfg.Discovery.BundleSuffixes, a.logger)
	if len(paths) == 0 {
		a.println("no plugin bundles found")
		return nil
	}
	a.printf("scanning %d bundle(s)\n", len(paths))
	summary := a.scanner.ScanAll(ctx, paths)
	a.printf("scanned %d, fresh %d, no parameters %d, failed %d\n",
		summary.Scanned, summary.Fresh, summary.NoParams, summary.Failed)
	return nil
}

func (a *app) cmdList(ctx context.Context) error {
	plugins, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	a.printPlugins(plugins)
	return nil
}

func (a *app) cmdSearch(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrValidation, "shell", "search", "usage: search <text>", nil)
	}
	plugins, err := a.store.Search(ctx, text)
	if err != nil {
		return err
	}
	a.printPlugins(plugins)
	return nil
}

func (a *app) cmdShow(ctx context.Context, idArg string) error {
	id, err := parsePluginID(idArg, "show")
	if err != nil {
		return err
	}
	plugin, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	params, err := a.store.UsableParams(ctx, id)
	if err != nil {
		return err
	}

	a.printf("%s (id %d)\n", plugin.Name, plugin.ID)
	a.printf("  path:    %s\n", plugin.Path)
	if plugin.Scanned() {
		a.printf("  scanned: %s\n", plugin.ScannedAt().Format(time.DateTime))
	} else {
		a.println("  scanned: never")
	}
	if len(params) == 0 {
		a.println("no usable parameters; run scan first")
		return nil
	}
	a.println(paramTable(params))
	return nil
}

func (a *app) cmdAdd(ctx context.Context, idArg string, bindings []string) error {
	id, err := parsePluginID(idArg, "add")
	if err != nil {
		return err
	}
	plugin, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	stage := session.Stage{
		PluginID:   plugin.ID,
		PluginPath: plugin.Path,
		PluginName: plugin.Name,
		Bindings:   bindings,
	}
	if err := a.mgr.AddStage(stage); err != nil {
		return err
	}
	a.printf("added stage %d: %s\n", len(a.mgr.Session().Stages), plugin.Name)
	return nil
}

func (a *app) cmdPipeline() error {
	sess := a.mgr.Session()
	if len(sess.Stages) == 0 {
		a.println("pipeline is empty")
	} else {
		a.println(pipelineTable(sess.Stages))
	}
	if sess.InputPath != "" {
		a.printf("input:       %s\n", sess.InputPath)
	}
	if sess.LastOutput != "" {
		a.printf("last output: %s\n", sess.LastOutput)
	}
	return nil
}

func (a *app) cmdMod(indexArg string, bindings []string) error {
	index, err := parseStageIndex(indexArg, "mod")
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		return services.Wrap(services.ErrValidation, "shell", "mod", "usage: mod <index> name:value ...", nil)
	}
	previous, err := a.mgr.ModifyStage(index, bindings)
	if err != nil {
		return err
	}
	if len(previous) == 0 {
		a.printf("stage %d bindings set\n", index)
	} else {
		a.printf("stage %d bindings replaced (was: %s)\n", index, strings.Join(previous, " "))
	}
	return nil
}

func (a *app) cmdRemove(indexArg string) error {
	index, err := parseStageIndex(indexArg, "rm")
	if err != nil {
		return err
	}
	removed, err := a.mgr.RemoveStage(index)
	if err != nil {
		return err
	}
	a.printf("removed stage %d: %s\n", index, removed.PluginName)
	return nil
}

func (a *app) cmdReset() error {
	if err := a.mgr.Reset(); err != nil {
		return err
	}
	a.println("pipeline cleared")
	return nil
}

func (a *app) cmdIn(path string) error {
	if err := a.mgr.SetInput(path); err != nil {
		return err
	}
	a.printf("input set to %s\n", path)
	return nil
}

func (a *app) cmdInLast() error {
	if err := a.mgr.SetInputFromLastOutput(); err != nil {
		return err
	}
	a.printf("input set to %s\n", a.mgr.Session().InputPath)
	return nil
}

func (a *app) cmdRun(ctx context.Context, args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	result, err := a.engine.Run(ctx, a.mgr, opts)
	if err != nil {
		if result.FailedPass != 0 {
			a.printf("run aborted at pass %d stage %d after %d invocation(s)\n",
				result.FailedPass, result.FailedStage, result.Invocations)
		}
		return err
	}
	a.printf("run complete: %d invocation(s), output %s\n", result.Invocations, result.FinalOutput)
	return nil
}

func (a *app) cmdPlay(ctx context.Context) error {
	last := a.mgr.Session().LastOutput
	if last == "" {
		return services.Wrap(services.ErrValidation, "shell", "play", "nothing to play; run the pipeline first", nil)
	}
	a.printf("playing %s\n", last)
	return a.client.Play(ctx, last)
}

func (a *app) cmdSave(name string) error {
	if err := a.mgr.Save(name); err != nil {
		return err
	}
	if name == "" {
		name = session.AutosaveName
	}
	a.printf("session saved as %q\n", name)
	return nil
}

func (a *app) cmdLoad(name string) error {
	if err := a.mgr.Load(name); err != nil {
		return err
	}
	a.printf("session loaded (%d stage(s))\n", len(a.mgr.Session().Stages))
	return nil
}

func (a *app) printPlugins(plugins []*catalog.Plugin) {
	if len(plugins) == 0 {
		a.println("no plugins in catalog; run scan first")
		return
	}
	a.println(pluginTable(plugins))
}

// parseRunArgs accepts up to two positional arguments (input, output) and
// the --recurse=N flag in any position.
func parseRunArgs(args []string) (pipeline.Options, error) {
	var opts pipeline.Options
	var positional []string
	for _, arg := range args {
		if value, ok := strings.CutPrefix(arg, "--recurse="); ok {
			passes, err := strconv.Atoi(value)
			if err != nil || passes < 1 {
				return pipeline.Options{}, services.Wrap(services.ErrValidation, "shell", "run",
					"--recurse wants a positive integer", nil)
			}
			opts.Passes = passes
			continue
		}
		if strings.HasPrefix(arg, "--") {
			return pipeline.Options{}, services.Wrap(services.ErrValidation, "shell", "run",
				"unknown flag "+arg, nil)
		}
		positional = append(positional, arg)
	}
	if len(positional) > 2 {
		return pipeline.Options{}, services.Wrap(services.ErrValidation, "shell", "run",
			"usage: run [in] [out] [--recurse=N]", nil)
	}
	if len(positional) > 0 {
		opts.Input = positional[0]
	}
	if len(positional) > 1 {
		opts.Output = positional[1]
	}
	return opts, nil
}

func parsePluginID(arg, op string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, services.Wrap(services.ErrValidation, "shell", op, "plugin id must be a positive integer", nil)
	}
	return id, nil
}

func parseStageIndex(arg, op string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "shell", op, "stage index must be an integer", nil)
	}
	return index, nil
}
