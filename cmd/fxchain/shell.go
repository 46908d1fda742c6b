package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"fxchain/internal/logging"
	"fxchain/internal/services"
)

const prompt = "fxchain> "

// runShell starts the interactive loop on stdin/stdout. A file lock under
// the data directory refuses a second concurrent shell; the catalog is
// single-writer.
func runShell(ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another fxchain shell is already running")
	}
	defer lock.Unlock()

	a, cleanup, err := newApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer cleanup()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runLoop(runCtx, a, os.Stdin, stdinIsTerminal())
}

// runLoop reads commands line by line until exit or EOF. Command errors are
// printed and the loop continues; only a read failure or context
// cancellation ends it with an error.
func runLoop(ctx context.Context, a *app, in io.Reader, interactive bool) error {
	logger := logging.NewComponentLogger(a.logger, "shell")
	if interactive {
		a.println("fxchain " + version + " (type help for commands)")
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		if interactive {
			a.printf(prompt)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read command: %w", err)
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		exit, err := a.dispatch(ctx, line)
		if err != nil {
			a.printf("error: %v\n", err)
			if !services.IsUsageError(err) {
				logger.Warn("command failed",
					logging.String("command", strings.Fields(line)[0]),
					logging.Error(err))
			}
		}
		if exit {
			return nil
		}
	}
}

// dispatch routes one command line. The bool result reports whether the
// loop should end.
func (a *app) dispatch(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	command, args := fields[0], fields[1:]

	switch command {
	case "exit", "quit":
		return true, nil
	case "help":
		a.printHelp()
		return false, nil
	case "scan":
		return false, a.cmdScan(ctx, args)
	case "list":
		return false, a.cmdList(ctx)
	case "search":
		return false, a.cmdSearch(ctx, strings.Join(args, " "))
	case "show":
		if len(args) != 1 {
			return false, usage("show <id>")
		}
		return false, a.cmdShow(ctx, args[0])
	case "add":
		if len(args) < 1 {
			return false, usage("add <id> [name:value ...]")
		}
		return false, a.cmdAdd(ctx, args[0], args[1:])
	case "ls", "list_pipeline":
		return false, a.cmdPipeline()
	case "mod":
		if len(args) < 2 {
			return false, usage("mod <index> name:value ...")
		}
		return false, a.cmdMod(args[0], args[1:])
	case "rm", "remove":
		if len(args) != 1 {
			return false, usage("rm <index>")
		}
		return false, a.cmdRemove(args[0])
	case "reset":
		return false, a.cmdReset()
	case "in":
		if len(args) != 1 {
			return false, usage("in <file>")
		}
		return false, a.cmdIn(args[0])
	case "in_last":
		return false, a.cmdInLast()
	case "r", "run", "run_pipeline":
		return false, a.cmdRun(ctx, args)
	case "play", "play_last":
		return false, a.cmdPlay(ctx)
	case "save":
		return false, a.cmdSave(firstOrEmpty(args))
	case "load":
		return false, a.cmdLoad(firstOrEmpty(args))
	default:
		return false, services.Wrap(services.ErrValidation, "shell", "dispatch",
			"unknown command "+command+"; type help", nil)
	}
}

func (a *app) printHelp() {
	a.println(`catalog:
  scan [roots...]                 discover bundles and refresh stale catalog entries
  list                            list all cataloged plugins
  search <text>                   find plugins by name or path
  show <id>                       show a plugin's usable parameters

pipeline:
  add <id> [name:value ...]       append a stage with optional parameter bindings
  ls | list_pipeline              show the current pipeline
  mod <index> name:value ...      replace a stage's bindings (1-based index)
  rm | remove <index>             remove a stage
  reset                           clear the pipeline

running:
  in <file>                       set the default input file
  in_last                         use the last output as input
  r | run | run_pipeline [in] [out] [--recurse=N]
                                  run the pipeline, N passes (default 1)
  play | play_last                play the last output

sessions:
  save [name]                     save the session snapshot
  load [name]                     load a session snapshot

  help                            this text
  exit                            leave the shell`)
}

func usage(text string) error {
	return services.Wrap(services.ErrValidation, "shell", "dispatch", "usage: "+text, nil)
}

func firstOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
