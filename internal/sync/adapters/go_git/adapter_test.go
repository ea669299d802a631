package gogit

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
)

var automation = domain.Identity{Name: "Knative Automation", Email: "automation@knative.team"}

func newRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	remote := t.TempDir()

	_, err := git.PlainInit(remote, true)
	require.NoError(t, err)
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remote}})
	require.NoError(t, err)
	return dir, remote
}

func fixedClock(a *Adapter) {
	a.now = func() time.Time { return time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC) }
}

func TestAdapter_PublishBranch(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git not on PATH, skipping local push test: %v", err)
	}

	dir, remote := newRepo(t)
	ctx := slogtest.Context(t)
	pom := filepath.Join(dir, "templates", "pom.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(pom), 0o755))

	a, err := New(dir, "origin", nil)
	require.NoError(t, err)
	fixedClock(a)

	require.NoError(t, a.ConfigureIdentity(ctx, automation))
	require.NoError(t, os.WriteFile(pom, []byte("<quarkus.platform.version>3.14.0</quarkus.platform.version>\n"), 0o644))
	require.NoError(t, a.Stage(ctx, "templates/pom.xml"))
	require.NoError(t, a.Commit(ctx, "initial"))

	branch := domain.BranchName("3.15.1")
	title := domain.PRTitle("3.15.1")
	require.NoError(t, os.WriteFile(pom, []byte("<quarkus.platform.version>3.15.1</quarkus.platform.version>\n"), 0o644))
	require.NoError(t, a.CreateBranch(ctx, branch))
	require.NoError(t, a.Stage(ctx, "templates/pom.xml"))
	require.NoError(t, a.Commit(ctx, title))
	require.NoError(t, a.Push(ctx, branch))

	local, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := local.Head()
	require.NoError(t, err)
	require.Equal(t, plumbing.NewBranchReferenceName(branch), head.Name())

	cfg, err := local.Config()
	require.NoError(t, err)
	require.Equal(t, automation.Name, cfg.User.Name)
	require.Equal(t, "origin", cfg.Branches[branch].Remote)

	bare, err := git.PlainOpen(remote)
	require.NoError(t, err)
	ref, err := bare.Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(t, err)
	require.Equal(t, head.Hash(), ref.Hash())

	commit, err := bare.CommitObject(ref.Hash())
	require.NoError(t, err)
	require.Equal(t, title, commit.Message)
	require.Equal(t, automation.Email, commit.Author.Email)
}

func TestAdapter_StageMissingFile(t *testing.T) {
	dir, _ := newRepo(t)

	a, err := New(dir, "", nil)
	require.NoError(t, err)
	require.Equal(t, "origin", a.remote)

	err = a.Stage(slogtest.Context(t), "missing.xml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing.xml")
}

func TestAdapter_StageFromSubdirectory(t *testing.T) {
	dir, _ := newRepo(t)
	sub := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(filepath.Join(sub, "http"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "http", "pom.xml"), []byte("<project/>\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "zz_filesystem_generated.go"), []byte("package templates\n"), 0o644))

	a, err := New(sub, "origin", nil)
	require.NoError(t, err)
	require.Equal(t, "templates", a.prefix)

	ctx := slogtest.Context(t)
	require.NoError(t, a.Stage(ctx, "http/pom.xml", filepath.Join(sub, "zz_filesystem_generated.go")))

	local, err := git.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := local.Worktree()
	require.NoError(t, err)
	status, err := wt.Status()
	require.NoError(t, err)
	require.Equal(t, git.Added, status.File("templates/http/pom.xml").Staging)
	require.Equal(t, git.Added, status.File("templates/zz_filesystem_generated.go").Staging)
}

func TestAdapter_PushTokenError(t *testing.T) {
	dir, _ := newRepo(t)
	boom := errors.New("token expired")

	a, err := New(dir, "origin", func(context.Context) (string, error) { return "", boom })
	require.NoError(t, err)

	err = a.Push(slogtest.Context(t), "any")
	require.ErrorIs(t, err, boom)
}

func TestNew_NotARepository(t *testing.T) {
	_, err := New(t.TempDir(), "origin", nil)
	require.ErrorIs(t, err, git.ErrRepositoryNotExists)
}
