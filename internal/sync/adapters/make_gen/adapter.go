// Package makegen regenerates derived files by running make targets.
package makegen

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/chainguard-dev/clog"
)

// Adapter implements ports.GeneratorPort by invoking `make <target>`.
type Adapter struct {
	dir    string
	target string
	stdout io.Writer
	stderr io.Writer
}

// New creates a make-based generator for target in dir. The target is also
// the file it produces, e.g. "zz_filesystem_generated.go". make is looked
// up on PATH only when Regenerate runs.
func New(dir, target string) *Adapter {
	return &Adapter{
		dir:    dir,
		target: target,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithOutput redirects make's output, which otherwise is inherited.
func (a *Adapter) WithOutput(stdout, stderr io.Writer) *Adapter {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// Regenerate runs the make target.
func (a *Adapter) Regenerate(ctx context.Context) error {
	makePath, err := exec.LookPath("make")
	if err != nil {
		return fmt.Errorf("make not found on PATH: %w", err)
	}
	clog.FromContext(ctx).Info("Regenerating", "target", a.target)

	//nolint:gosec // G204: Target comes from trusted configuration
	cmd := exec.CommandContext(ctx, makePath, a.target)
	cmd.Dir = a.dir
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("make %s: %w", a.target, err)
	}
	return nil
}

// Outputs returns the generated file.
func (a *Adapter) Outputs() []string {
	return []string{a.target}
}
