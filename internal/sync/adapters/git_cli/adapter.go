// Package gitcli publishes branches by shelling out to the git CLI.
package gitcli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
)

// Adapter implements ports.VersionControlPort using the git binary.
type Adapter struct {
	dir    string
	remote string
	stdout io.Writer
	stderr io.Writer
}

// New creates a new git CLI adapter operating in dir and pushing to remote.
// git is looked up on PATH only when a command runs.
func New(dir, remote string) *Adapter {
	if remote == "" {
		remote = "origin"
	}
	return &Adapter{
		dir:    dir,
		remote: remote,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithOutput redirects the output of git commands, which otherwise goes to
// the process's standard streams.
func (a *Adapter) WithOutput(stdout, stderr io.Writer) *Adapter {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// ConfigureIdentity sets the repository-local committer name and email.
func (a *Adapter) ConfigureIdentity(ctx context.Context, id domain.Identity) error {
	if err := a.run(ctx, "config", "user.email", id.Email); err != nil {
		return err
	}
	return a.run(ctx, "config", "user.name", id.Name)
}

// CreateBranch creates and checks out name.
func (a *Adapter) CreateBranch(ctx context.Context, name string) error {
	return a.run(ctx, "checkout", "-b", name)
}

// Stage adds paths to the index.
func (a *Adapter) Stage(ctx context.Context, paths ...string) error {
	return a.run(ctx, append([]string{"add", "--"}, paths...)...)
}

// Commit records the staged changes.
func (a *Adapter) Commit(ctx context.Context, message string) error {
	return a.run(ctx, "commit", "-m", message)
}

// Push pushes branch to the remote and sets it as upstream.
func (a *Adapter) Push(ctx context.Context, branch string) error {
	return a.run(ctx, "push", "--set-upstream", a.remote, branch)
}

func (a *Adapter) run(ctx context.Context, args ...string) error {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return fmt.Errorf("git not found on PATH: %w", err)
	}
	clog.FromContext(ctx).Debug("Running git", "args", strings.Join(args, " "))

	//nolint:gosec // G204: Arguments are built by this package, not user input
	cmd := exec.CommandContext(ctx, gitPath, args...)
	cmd.Dir = a.dir

	var stderr bytes.Buffer
	cmd.Stdout = a.stdout
	cmd.Stderr = io.MultiWriter(a.stderr, &stderr)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
