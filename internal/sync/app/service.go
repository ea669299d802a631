// Package app wires the ports into the platform version sync workflow.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chainguard-dev/clog"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
	"github.com/nathantilsley/platform-sync/internal/sync/ports"
)

// DefaultPageSize is the number of open pull requests fetched per page by
// the duplicate guard.
const DefaultPageSize = 10

// Options carries the per-repository settings of a run.
type Options struct {
	Repository      domain.Repository
	BaseBranch      string
	PageSize        int
	DescriptorPaths []string
	Property        string
	Identity        domain.Identity
	// DryRun stops after the duplicate guard and prints the planned rewrites.
	DryRun bool
	// Out receives dry-run diffs. Defaults to os.Stdout.
	Out io.Writer
}

// Service runs the sync workflow once.
type Service struct {
	releases    ports.ReleasePort
	descriptors ports.DescriptorPort
	prs         ports.PullRequestPort
	vcs         ports.VersionControlPort
	generator   ports.GeneratorPort // nil disables regeneration
	differ      ports.DiffPort
	opts        Options
}

// New creates a Service. generator may be nil.
func New(
	releases ports.ReleasePort,
	descriptors ports.DescriptorPort,
	prs ports.PullRequestPort,
	vcs ports.VersionControlPort,
	generator ports.GeneratorPort,
	differ ports.DiffPort,
	opts Options,
) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Property == "" {
		opts.Property = domain.DefaultProperty
	}
	if opts.BaseBranch == "" {
		opts.BaseBranch = "main"
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Service{
		releases:    releases,
		descriptors: descriptors,
		prs:         prs,
		vcs:         vcs,
		generator:   generator,
		differ:      differ,
		opts:        opts,
	}
}

type rewrite struct {
	path   string
	before []byte
	after  []byte
}

// Run fetches the latest platform version and, if the descriptors are stale
// and no equivalent pull request is open, rewrites them, publishes a branch
// and opens a pull request. Errors are not recovered: files already written
// stay modified when a later step fails.
func (s *Service) Run(ctx context.Context) (domain.Outcome, error) {
	latest, err := s.releases.LatestVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching latest platform version: %w", err)
	}

	log := clog.FromContext(ctx).With("version", latest)
	ctx = clog.WithLogger(ctx, log)
	title := domain.PRTitle(latest)
	branch := domain.BranchName(latest)

	descriptors, err := s.readDescriptors(ctx)
	if err != nil {
		return 0, err
	}

	if domain.IsUpToDate(latest, descriptors) {
		log.Info("Quarkus platform is up-to-date!")
		return domain.OutcomeUpToDate, nil
	}

	exists, err := s.prExists(ctx, domain.HasTitle(title))
	if err != nil {
		return 0, fmt.Errorf("checking for existing pull request: %w", err)
	}
	if exists {
		log.Info("The PR already exists!", "title", title)
		return domain.OutcomePRExists, nil
	}

	// Plan every rewrite before touching disk so a descriptor the pattern
	// cannot match aborts the run with all files intact.
	rewrites, err := s.planRewrites(ctx, latest)
	if err != nil {
		return 0, err
	}

	if s.opts.DryRun {
		for _, rw := range rewrites {
			fmt.Fprintln(s.opts.Out, s.diff(rw))
		}
		log.Info("Dry run, not writing descriptors", "branch", branch, "title", title)
		return domain.OutcomeDryRun, nil
	}

	for _, rw := range rewrites {
		if err := s.descriptors.Save(ctx, rw.path, rw.after); err != nil {
			return 0, fmt.Errorf("writing descriptor %s: %w", rw.path, err)
		}
		log.Debug("Rewrote descriptor", "path", rw.path, "diff", s.diff(rw))
	}

	if err := s.publishBranch(ctx, branch, title); err != nil {
		return 0, fmt.Errorf("publishing branch %s: %w", branch, err)
	}

	pr, err := s.prs.CreatePullRequest(ctx, domain.NewPullRequest{
		Title: title,
		Body:  title,
		Head:  s.opts.Repository.HeadRef(branch),
		Base:  s.opts.BaseBranch,
	})
	if err != nil {
		return 0, fmt.Errorf("creating pull request: %w", err)
	}

	log.Info("The PR has been created!", "number", pr.Number, "url", pr.URL)
	return domain.OutcomePRCreated, nil
}

func (s *Service) readDescriptors(ctx context.Context) ([]domain.Descriptor, error) {
	descriptors := make([]domain.Descriptor, 0, len(s.opts.DescriptorPaths))
	for _, path := range s.opts.DescriptorPaths {
		version, err := s.descriptors.ReadVersion(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("reading descriptor %s: %w", path, err)
		}
		clog.FromContext(ctx).Debug("Read descriptor", "path", path, "pinned", version)
		descriptors = append(descriptors, domain.Descriptor{Path: path, Version: version})
	}
	return descriptors, nil
}

// prExists pages through open pull requests until match succeeds or a short
// page marks the end of the listing.
func (s *Service) prExists(ctx context.Context, match func(domain.PullRequest) bool) (bool, error) {
	perPage := s.opts.PageSize
	for page := 1; ; page++ {
		prs, err := s.prs.ListOpenPullRequests(ctx, page, perPage)
		if err != nil {
			return false, fmt.Errorf("listing open pull requests (page %d): %w", page, err)
		}
		clog.FromContext(ctx).Debug("Listed open pull requests", "page", page, "count", len(prs))

		for _, pr := range prs {
			if match(pr) {
				return true, nil
			}
		}
		if len(prs) < perPage {
			return false, nil
		}
	}
}

func (s *Service) planRewrites(ctx context.Context, version string) ([]rewrite, error) {
	rewrites := make([]rewrite, 0, len(s.opts.DescriptorPaths))
	for _, path := range s.opts.DescriptorPaths {
		before, err := s.descriptors.Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("loading descriptor %s: %w", path, err)
		}
		after, err := domain.RewritePinnedVersion(before, s.opts.Property, version)
		if err != nil {
			var pnm *domain.PatternNotMatchedError
			if errors.As(err, &pnm) {
				pnm.Path = path
			}
			return nil, fmt.Errorf("rewriting descriptor %s: %w", path, err)
		}
		rewrites = append(rewrites, rewrite{path: path, before: before, after: after})
	}
	return rewrites, nil
}

// publishBranch runs the publish steps in order and stops at the first
// failure, wrapping it in a StepError naming the step.
func (s *Service) publishBranch(ctx context.Context, branch, message string) error {
	log := clog.FromContext(ctx).With("branch", branch)

	paths := append([]string{}, s.opts.DescriptorPaths...)
	steps := []struct {
		name string
		run  func() error
	}{
		{domain.StepConfigureIdentity, func() error { return s.vcs.ConfigureIdentity(ctx, s.opts.Identity) }},
		{domain.StepCreateBranch, func() error { return s.vcs.CreateBranch(ctx, branch) }},
		{domain.StepRegenerate, func() error {
			if s.generator == nil {
				return nil
			}
			paths = append(paths, s.generator.Outputs()...)
			return s.generator.Regenerate(ctx)
		}},
		{domain.StepStage, func() error { return s.vcs.Stage(ctx, paths...) }},
		{domain.StepCommit, func() error { return s.vcs.Commit(ctx, message) }},
		{domain.StepPush, func() error { return s.vcs.Push(ctx, branch) }},
	}

	for _, step := range steps {
		log.Debug("Running publish step", "step", step.name)
		if err := step.run(); err != nil {
			return &domain.StepError{Step: step.name, Err: err}
		}
	}
	log.Info("Pushed branch")
	return nil
}

func (s *Service) diff(rw rewrite) string {
	return s.differ.ComputeDiff("a/"+rw.path, "b/"+rw.path, rw.before, rw.after)
}
