// Package ports declares the interfaces the sync workflow depends on.
// Adapters under internal/sync/adapters implement them.
package ports

import (
	"context"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
)

// ReleasePort discovers the latest platform release.
type ReleasePort interface {
	LatestVersion(ctx context.Context) (string, error)
}

// DescriptorPort reads and writes build descriptor files.
type DescriptorPort interface {
	// ReadVersion returns the version pinned by the descriptor at path.
	ReadVersion(ctx context.Context, path string) (string, error)
	Load(ctx context.Context, path string) ([]byte, error)
	Save(ctx context.Context, path string, content []byte) error
}

// PullRequestPort lists and opens pull requests on the hosting service.
type PullRequestPort interface {
	// ListOpenPullRequests returns one page (1-based) of open pull requests.
	ListOpenPullRequests(ctx context.Context, page, perPage int) ([]domain.PullRequest, error)
	CreatePullRequest(ctx context.Context, pr domain.NewPullRequest) (domain.PullRequest, error)
}

// VersionControlPort performs the discrete steps needed to publish a branch.
type VersionControlPort interface {
	ConfigureIdentity(ctx context.Context, id domain.Identity) error
	// CreateBranch creates name from HEAD and checks it out, keeping
	// uncommitted changes in the working tree.
	CreateBranch(ctx context.Context, name string) error
	Stage(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	// Push pushes branch and sets it as upstream.
	Push(ctx context.Context, branch string) error
}

// GeneratorPort regenerates derived files before they are committed.
type GeneratorPort interface {
	Regenerate(ctx context.Context) error
	// Outputs lists the paths Regenerate writes, relative to the repository root.
	Outputs() []string
}

// DiffPort renders a human-readable diff between two versions of a file.
type DiffPort interface {
	ComputeDiff(baseName, headName string, base, head []byte) string
}
