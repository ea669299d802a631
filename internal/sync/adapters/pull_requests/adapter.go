// Package pullrequests lists and opens pull requests through the GitHub API.
package pullrequests

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
)

// Adapter implements ports.PullRequestPort for a single repository.
type Adapter struct {
	client *github.Client
	repo   domain.Repository
}

// New creates a new pull request adapter.
func New(client *github.Client, repo domain.Repository) *Adapter {
	return &Adapter{client: client, repo: repo}
}

// ListOpenPullRequests returns a single page of open pull requests.
func (a *Adapter) ListOpenPullRequests(ctx context.Context, page, perPage int) ([]domain.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State: "open",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	prs, _, err := a.client.PullRequests.List(ctx, a.repo.Owner, a.repo.Name, opts)
	if err != nil {
		return nil, fmt.Errorf("listing pull requests: %w", err)
	}

	out := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		out = append(out, toDomain(pr))
	}
	return out, nil
}

// CreatePullRequest opens a pull request.
func (a *Adapter) CreatePullRequest(ctx context.Context, pr domain.NewPullRequest) (domain.PullRequest, error) {
	created, _, err := a.client.PullRequests.Create(ctx, a.repo.Owner, a.repo.Name, &github.NewPullRequest{
		Title: github.Ptr(pr.Title),
		Body:  github.Ptr(pr.Body),
		Head:  github.Ptr(pr.Head),
		Base:  github.Ptr(pr.Base),
	})
	if err != nil {
		return domain.PullRequest{}, fmt.Errorf("creating pull request: %w", err)
	}
	return toDomain(created), nil
}

func toDomain(pr *github.PullRequest) domain.PullRequest {
	return domain.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		HeadRef: pr.GetHead().GetRef(),
		BaseRef: pr.GetBase().GetRef(),
		URL:     pr.GetHTMLURL(),
	}
}
