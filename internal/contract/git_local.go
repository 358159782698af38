package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultGitBinary is the executable used when none is configured.
const DefaultGitBinary = "git"

// DefaultTimeout bounds a single git invocation.
const DefaultTimeout = 30 * time.Second

// waitDelay caps how long Wait blocks on inherited pipes after the process is killed.
const waitDelay = 2 * time.Second

// LocalGitExecutor implements the Executor interface by executing the
// local 'git' binary installed on the machine.
type LocalGitExecutor struct {
	Binary  string        // defaults to DefaultGitBinary
	Timeout time.Duration // zero means no limit beyond ctx
}

var _ Executor = &LocalGitExecutor{} // Compile-time check

// NewLocalGitExecutor creates a new executor for the given binary and timeout.
func NewLocalGitExecutor(binary string, timeout time.Duration) *LocalGitExecutor {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultGitBinary
	}
	return &LocalGitExecutor{Binary: binary, Timeout: timeout}
}

// Execute runs `git <subcommand> <args...>` in dir and returns stdout verbatim.
// The process is killed when ctx ends or the timeout elapses.
func (e *LocalGitExecutor) Execute(ctx context.Context, dir string, subcommand string, args ...string) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	binary := e.Binary
	if binary == "" {
		binary = DefaultGitBinary
	}

	fullArgs := append([]string{subcommand}, args...)
	cmd := exec.CommandContext(ctx, binary, fullArgs...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "LC_ALL=C", "GIT_TERMINAL_PROMPT=0")
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	message := stderr.String()
	if message == "" {
		message = stdout.String()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", NewCanceledError(dir, subcommand, args, message, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", NewCommandError(dir, subcommand, args, exitErr.ExitCode(), message, err)
	}
	return "", NewCommandError(dir, subcommand, args, -1, message,
		fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err))
}

// RepoRoot returns the absolute path to the root of the Git repository
// containing dir.
func RepoRoot(ctx context.Context, executor Executor, dir string) (string, error) {
	out, err := executor.Execute(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HasCommits reports whether HEAD of the repository containing dir points at a commit.
// An unborn branch answers false with a nil error.
func HasCommits(ctx context.Context, executor Executor, dir string) (bool, error) {
	_, err := executor.Execute(ctx, dir, "rev-parse", "--verify", "-q", "HEAD")
	if err == nil {
		return true, nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && !cmdErr.Canceled() && cmdErr.ExitCode == 1 {
		return false, nil
	}
	return false, err
}
