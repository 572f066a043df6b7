package abcde

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"cdrip/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	CombinedOutput(ctx context.Context, binary string, args []string) ([]byte, error)
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

// Client wraps abcde CLI interactions.
type Client struct {
	binary     string
	ripTimeout time.Duration
	exec       Executor
}

// New constructs an abcde client. A ripTimeoutSeconds of zero leaves the rip
// bounded only by the tool itself.
func New(binary string, ripTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("abcde binary required")
	}
	client := &Client{
		binary:     binary,
		ripTimeout: time.Duration(ripTimeoutSeconds) * time.Second,
		exec:       commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Rip runs abcde non-interactively against the given device, redirecting its
// output tree into outputDir. The combined stdout/stderr text is returned for
// logging and metadata extraction even when the rip fails. A non-zero exit
// surfaces as a services.ExitCodeError.
func (c *Client) Rip(ctx context.Context, devicePath, outputDir string) (string, error) {
	if strings.TrimSpace(devicePath) == "" {
		return "", errors.New("device path required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return "", errors.New("output directory required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	ripCtx := ctx
	if c.ripTimeout > 0 {
		var cancel context.CancelFunc
		ripCtx, cancel = context.WithTimeout(ctx, c.ripTimeout)
		defer cancel()
	}

	args := []string{"-N", "-d", devicePath, "OUTPUTDIR=" + outputDir}
	output, err := c.exec.CombinedOutput(ripCtx, c.binary, args)
	text := string(output)
	if err != nil {
		// A canceled parent context (shutdown mid-rip) is not a timeout.
		if errors.Is(ripCtx.Err(), context.DeadlineExceeded) {
			return text, services.Wrap(services.ErrTimeout, "ripping", "run abcde", "rip exceeded the configured timeout", ripCtx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return text, &services.ExitCodeError{Tool: "abcde", Code: exitErr.ExitCode(), Err: err}
		}
		return text, fmt.Errorf("run abcde: %w", err)
	}
	return text, nil
}

type commandExecutor struct{}

func (commandExecutor) CombinedOutput(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.CombinedOutput()
}
