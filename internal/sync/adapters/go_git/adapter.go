// Package gogit publishes branches in-process with go-git, without needing
// a git binary on the runner.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
)

// TokenSource returns a token used to authenticate pushes over HTTPS.
type TokenSource func(ctx context.Context) (string, error)

// Adapter implements ports.VersionControlPort on top of go-git.
type Adapter struct {
	repo     *git.Repository
	prefix   string // dir relative to the worktree root
	remote   string
	tokens   TokenSource // nil pushes without credentials
	identity domain.Identity
	now      func() time.Time
}

// New opens the repository containing dir. Staged paths are resolved
// against dir, which may be below the worktree root. tokens may be nil.
func New(dir, remote string, tokens TokenSource) (*Adapter, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	prefix, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, fmt.Errorf("locating %s in worktree: %w", dir, err)
	}
	if remote == "" {
		remote = git.DefaultRemoteName
	}
	return &Adapter{repo: repo, prefix: prefix, remote: remote, tokens: tokens, now: time.Now}, nil
}

// ConfigureIdentity records the committer and stores it in the repository
// config, matching what `git config user.*` would do.
func (a *Adapter) ConfigureIdentity(_ context.Context, id domain.Identity) error {
	cfg, err := a.repo.Config()
	if err != nil {
		return fmt.Errorf("reading repository config: %w", err)
	}
	cfg.User.Name = id.Name
	cfg.User.Email = id.Email
	if err := a.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("writing repository config: %w", err)
	}
	a.identity = id
	return nil
}

// CreateBranch creates name at HEAD and checks it out, keeping local changes.
func (a *Adapter) CreateBranch(_ context.Context, name string) error {
	wt, err := a.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	err = wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
		Keep:   true,
	})
	if err != nil {
		return fmt.Errorf("checking out new branch %s: %w", name, err)
	}
	return nil
}

// Stage adds paths to the index. Relative paths are taken from the
// directory the adapter was opened with.
func (a *Adapter) Stage(_ context.Context, paths ...string) error {
	wt, err := a.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	for _, p := range paths {
		rel, err := a.worktreePath(wt, p)
		if err != nil {
			return err
		}
		if _, err := wt.Add(rel); err != nil {
			return fmt.Errorf("adding %s: %w", p, err)
		}
	}
	return nil
}

func (a *Adapter) worktreePath(wt *git.Worktree, p string) (string, error) {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Join(a.prefix, p)), nil
	}
	rel, err := filepath.Rel(wt.Filesystem.Root(), p)
	if err != nil {
		return "", fmt.Errorf("locating %s in worktree: %w", p, err)
	}
	return filepath.ToSlash(rel), nil
}

// Commit records the staged changes as the configured identity.
func (a *Adapter) Commit(ctx context.Context, message string) error {
	wt, err := a.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	sig := &object.Signature{Name: a.identity.Name, Email: a.identity.Email, When: a.now()}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	clog.FromContext(ctx).Debug("Created commit", "sha", hash.String())
	return nil
}

// Push pushes branch to the remote and records it as the branch upstream.
func (a *Adapter) Push(ctx context.Context, branch string) error {
	ref := plumbing.NewBranchReferenceName(branch)

	auth, err := a.auth(ctx)
	if err != nil {
		return err
	}

	err = a.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: a.remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref.String() + ":" + ref.String())},
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pushing %s to %s: %w", branch, a.remote, err)
	}

	err = a.repo.CreateBranch(&config.Branch{Name: branch, Remote: a.remote, Merge: ref})
	if err != nil && !errors.Is(err, git.ErrBranchExists) {
		return fmt.Errorf("setting upstream for %s: %w", branch, err)
	}
	return nil
}

func (a *Adapter) auth(ctx context.Context) (transport.AuthMethod, error) {
	if a.tokens == nil {
		return nil, nil
	}
	token, err := a.tokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting push token: %w", err)
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: token}, nil
}
