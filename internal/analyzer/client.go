package analyzer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"fxchain/internal/services"
)

// Lister produces a plugin's textual parameter report.
type Lister interface {
	ListParams(ctx context.Context, pluginPath string) (string, error)
}

// ProcessRequest describes one processing invocation.
type ProcessRequest struct {
	PluginPath string
	InputPath  string
	OutputPath string
	// Bindings are passed through verbatim as name:value strings. They are
	// never validated against the catalog; the host decides what they mean.
	Bindings []string
}

// Processor runs a plugin over an audio file.
type Processor interface {
	Process(ctx context.Context, req ProcessRequest) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client drives the plugin host binary. It implements Lister and Processor.
type Client struct {
	binary       string
	playerBinary string
	listTimeout  time.Duration
	exec         Executor
}

// New constructs a client for the given host binary. listTimeoutSeconds
// bounds ListParams calls; playerBinary may be empty to disable playback.
func New(binary, playerBinary string, listTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("analyzer binary required")
	}
	client := &Client{
		binary:       binary,
		playerBinary: strings.TrimSpace(playerBinary),
		listTimeout:  time.Duration(listTimeoutSeconds) * time.Second,
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ListParams runs the listing command and returns its stdout verbatim.
func (c *Client) ListParams(ctx context.Context, pluginPath string) (string, error) {
	pluginPath = strings.TrimSpace(pluginPath)
	if pluginPath == "" {
		return "", errors.New("plugin path required")
	}

	listCtx := ctx
	if c.listTimeout > 0 {
		var cancel context.CancelFunc
		listCtx, cancel = context.WithTimeout(ctx, c.listTimeout)
		defer cancel()
	}

	args := []string{"list", "--plugin=" + pluginPath}
	var out strings.Builder
	err := c.exec.Run(listCtx, c.binary, args, func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
	})
	if err != nil {
		if errors.Is(listCtx.Err(), context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "analyzer", "list", pluginPath, err)
		}
		return "", services.Wrap(services.ErrExternalTool, "analyzer", "list", pluginPath, err)
	}
	return out.String(), nil
}

// Process runs one plugin invocation. The request's bindings become
// repeated --param arguments. No timeout is applied beyond ctx.
func (c *Client) Process(ctx context.Context, req ProcessRequest) error {
	if strings.TrimSpace(req.PluginPath) == "" {
		return errors.New("plugin path required")
	}
	if strings.TrimSpace(req.InputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("output path required")
	}

	args := []string{
		"process",
		"--plugin=" + req.PluginPath,
		"--input=" + req.InputPath,
		"--output=" + req.OutputPath,
		"--overwrite",
	}
	for _, binding := range req.Bindings {
		args = append(args, "--param="+binding)
	}

	if err := c.exec.Run(ctx, c.binary, args, nil); err != nil {
		return services.Wrap(services.ErrExternalTool, "analyzer", "process", req.PluginPath, err)
	}
	return nil
}

// Play plays an audio file with the configured player binary.
func (c *Client) Play(ctx context.Context, path string) error {
	if c.playerBinary == "" {
		return services.Wrap(services.ErrValidation, "player", "play", "no player binary configured", nil)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("audio path required")
	}
	if err := c.exec.Run(ctx, c.playerBinary, []string{path}, nil); err != nil {
		return services.Wrap(services.ErrExternalTool, "player", "play", path, err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	forward := func(line string) {
		if onStdout != nil {
			onStdout(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}

	wg.Add(2)
	go scan(stdout, forward)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			fmt.Fprintln(os.Stderr, scanner.Text())
		}
	}()

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
