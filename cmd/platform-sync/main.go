// Package main provides a CI tool that keeps the Quarkus platform version
// pinned in the function templates current, opening a pull request when a
// new platform is released.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/nathantilsley/platform-sync/internal/config"
	githubclient "github.com/nathantilsley/platform-sync/internal/sync/adapters/github_client"
	gitcli "github.com/nathantilsley/platform-sync/internal/sync/adapters/git_cli"
	gogit "github.com/nathantilsley/platform-sync/internal/sync/adapters/go_git"
	linediff "github.com/nathantilsley/platform-sync/internal/sync/adapters/line_diff"
	makegen "github.com/nathantilsley/platform-sync/internal/sync/adapters/make_gen"
	platformapi "github.com/nathantilsley/platform-sync/internal/sync/adapters/platform_api"
	pomxml "github.com/nathantilsley/platform-sync/internal/sync/adapters/pom_xml"
	pullrequests "github.com/nathantilsley/platform-sync/internal/sync/adapters/pull_requests"
	"github.com/nathantilsley/platform-sync/internal/sync/app"
	"github.com/nathantilsley/platform-sync/internal/sync/ports"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	dryRun  bool
	timeout time.Duration
	workDir string
}

func newRootCmd() *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:   "platform-sync",
		Short: "Open a pull request when a newer Quarkus platform is released",
		Long: `platform-sync fetches the latest Quarkus platform version, compares it with
the version pinned in the function template descriptors and, when they are
stale and no equivalent pull request is open, rewrites the descriptors,
pushes a branch and opens a pull request.

Configuration is read from the environment; GITHUB_REPOSITORY and either
GITHUB_TOKEN or GitHub App credentials are required.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the descriptor changes without writing, pushing or opening a PR")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "abort the run after this long (0 disables)")
	cmd.Flags().StringVar(&flags.workDir, "workdir", "", "repository root (overrides WORK_DIR)")

	return cmd
}

func run(ctx context.Context, flags cliFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if flags.workDir != "" {
		cfg.WorkDir = flags.workDir
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	ctx = clog.WithLogger(ctx, clog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	svc, err := buildService(ctx, cfg, flags.dryRun)
	if err != nil {
		return err
	}

	outcome, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	clog.FromContext(ctx).Info("OK!", "outcome", outcome.String())
	return nil
}

func buildService(ctx context.Context, cfg *config.Config, dryRun bool) (*app.Service, error) {
	repo := cfg.RepositoryRef()

	gh, err := githubclient.New(ctx, githubclient.Options{
		Token:          cfg.Token,
		AppID:          cfg.AppID,
		InstallationID: cfg.InstallationID,
		PrivateKeyPath: cfg.PrivateKeyPath,
		APIURL:         cfg.APIURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}

	var vcs ports.VersionControlPort
	switch cfg.VCSBackend {
	case config.BackendGoGit:
		vcs, err = gogit.New(cfg.WorkDir, cfg.Remote, gh.Token)
	default:
		vcs = gitcli.New(cfg.WorkDir, cfg.Remote)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s version control backend: %w", cfg.VCSBackend, err)
	}

	var generator ports.GeneratorPort
	if cfg.GeneratedFile != "" {
		generator = makegen.New(cfg.WorkDir, cfg.GeneratedFile)
	}

	return app.New(
		platformapi.New(nil, cfg.PlatformsURL),
		pomxml.New(cfg.WorkDir, cfg.Property),
		pullrequests.New(gh.Client, repo),
		vcs,
		generator,
		linediff.New(),
		app.Options{
			Repository:      repo,
			BaseBranch:      cfg.BaseBranch,
			PageSize:        cfg.PageSize,
			DescriptorPaths: cfg.DescriptorPaths,
			Property:        cfg.Property,
			Identity:        cfg.Identity(),
			DryRun:          dryRun,
		},
	), nil
}
