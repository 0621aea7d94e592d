package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes an external command and returns its standard output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// waitDelay bounds how long Wait blocks on pipes held by orphaned children
// after the context is done
const waitDelay = time.Second

// Run executes name with args and captures stdout. Stderr is discarded.
// The process is killed when ctx is done.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}

// runTool runs a tool bounded by timeout and returns its output as text.
// Any failure (missing executable, timeout, non-zero exit) is returned as an
// error so that callers can abstain.
func runTool(ctx context.Context, runner Runner, timeout time.Duration, name string, args ...string) (string, error) {
	if name == "" {
		return "", errors.New("no command configured")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := runner.Run(ctx, name, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", name, ctxErr)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}
