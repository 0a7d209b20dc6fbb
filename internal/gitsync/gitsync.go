// Package gitsync shells out to git to synchronize the note repository
// with its remote.
package gitsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrCommandFailed is the sentinel wrapped by every failed git invocation.
var ErrCommandFailed = errors.New("git command failed")

// CommandError carries the invocation and captured stderr of a failed
// git command.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Syncer is the narrow capability interface over the version-control
// operations the pipeline needs. Implementations other than Git exist
// only for tests.
type Syncer interface {
	// Pull rebases the local branch onto the remote.
	Pull(ctx context.Context) error
	// Stage adds the file at path (relative to the repository root).
	Stage(ctx context.Context, path string) error
	// Commit records the staged changes with the given message.
	Commit(ctx context.Context, message string) error
	// Push publishes local commits to the remote.
	Push(ctx context.Context) error
}

// Runner executes a prepared command and returns its stdout.
type Runner interface {
	Run(cmd *exec.Cmd) (string, error)
}

// execRunner delegates to os/exec, capturing output.
type execRunner struct{}

func (execRunner) Run(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Args:   cmd.Args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    fmt.Errorf("%w: %v", ErrCommandFailed, err),
		}
	}
	return stdout.String(), nil
}

// Identity is the commit author recorded on synchronized notes.
type Identity struct {
	Name  string
	Email string
}

// Git implements Syncer by invoking the git binary against a repository
// working tree. Each invocation is bounded by the configured timeout so a
// hung subprocess cannot stall the poll loop indefinitely.
type Git struct {
	repo    string
	author  Identity
	timeout time.Duration
	runner  Runner
}

// New creates a Git syncer for the repository at repo.
func New(repo string, author Identity, timeout time.Duration) *Git {
	return NewWithRunner(repo, author, timeout, execRunner{})
}

// NewWithRunner creates a Git syncer with a custom command runner.
func NewWithRunner(repo string, author Identity, timeout time.Duration, runner Runner) *Git {
	return &Git{repo: repo, author: author, timeout: timeout, runner: runner}
}

// IsRepository reports whether path is inside a git work tree.
func IsRepository(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--is-inside-work-tree")
	_, err := execRunner{}.Run(cmd)
	return err == nil
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.repo}, args...)...)
	return g.runner.Run(cmd)
}

// Pull implements Syncer.
func (g *Git) Pull(ctx context.Context) error {
	_, err := g.run(ctx, "pull", "--rebase")
	return err
}

// Stage implements Syncer.
func (g *Git) Stage(ctx context.Context, path string) error {
	_, err := g.run(ctx, "add", path)
	return err
}

// Commit implements Syncer. The configured identity is passed per
// invocation so the repository needs no global git config.
func (g *Git) Commit(ctx context.Context, message string) error {
	args := []string{
		"-c", "user.name=" + g.author.Name,
		"-c", "user.email=" + g.author.Email,
		"commit", "-m", message,
	}
	_, err := g.run(ctx, args...)
	return err
}

// Push implements Syncer.
func (g *Git) Push(ctx context.Context) error {
	_, err := g.run(ctx, "push")
	return err
}
