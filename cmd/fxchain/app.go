package main

import (
	"fmt"
	"io"
	"log/slog"

	"fxchain/internal/analyzer"
	"fxchain/internal/catalog"
	"fxchain/internal/config"
	"fxchain/internal/logging"
	"fxchain/internal/pipeline"
	"fxchain/internal/session"
)

// app bundles the wired core components behind the operator surface. Both
// the interactive shell and the one-shot subcommands go through it, so the
// session semantics are identical either way.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	scanner *catalog.Scanner
	client  *analyzer.Client
	mgr     *session.Manager
	engine  *pipeline.Engine
	out     io.Writer
}

// newApp wires the full component graph. The returned cleanup closes the
// catalog store.
func newApp(ctx *commandContext, out io.Writer) (*app, func(), error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	client, err := ctx.newAnalyzerClient()
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	a := buildApp(cfg, logger, store, client, out)
	return a, func() { store.Close() }, nil
}

// buildApp assembles an app from ready components. Tests use it with a
// stubbed analyzer executor.
func buildApp(cfg *config.Config, logger *slog.Logger, store *catalog.Store, client *analyzer.Client, out io.Writer) *app {
	if logger == nil {
		logger = logging.NewNop()
	}
	mgr := session.NewManager(session.NewSnapshots(cfg.SessionsDir()), logger)
	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		scanner: catalog.NewScanner(store, client, logger),
		client:  client,
		mgr:     mgr,
		engine:  pipeline.New(client, logger),
		out:     out,
	}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
