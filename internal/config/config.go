// Package config loads platform-sync settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
)

// VCS backends.
const (
	BackendCLI   = "cli"
	BackendGoGit = "gogit"
)

// Config holds every environment-driven setting. Defaults reproduce the
// knative/func update-quarkus-platform workflow.
type Config struct {
	Repository string `env:"GITHUB_REPOSITORY,required"`
	Token      string `env:"GITHUB_TOKEN"`
	APIURL     string `env:"GITHUB_API_URL"`

	AppID          int64  `env:"GITHUB_APP_ID"`
	InstallationID int64  `env:"GITHUB_INSTALLATION_ID"`
	PrivateKeyPath string `env:"GITHUB_APP_PRIVATE_KEY_PATH"`

	PlatformsURL    string   `env:"PLATFORMS_URL,default=https://code.quarkus.io/api/platforms"`
	DescriptorPaths []string `env:"DESCRIPTOR_PATHS,default=templates/quarkus/cloudevents/pom.xml,templates/quarkus/http/pom.xml"`
	Property        string   `env:"VERSION_PROPERTY,default=quarkus.platform.version"`
	GeneratedFile   string   `env:"GENERATED_FILE,default=zz_filesystem_generated.go"`

	BaseBranch     string `env:"BASE_BRANCH,default=main"`
	Remote         string `env:"GIT_REMOTE,default=origin"`
	PageSize       int    `env:"PR_PAGE_SIZE,default=10"`
	CommitterName  string `env:"COMMITTER_NAME,default=Knative Automation"`
	CommitterEmail string `env:"COMMITTER_EMAIL,default=automation@knative.team"`
	VCSBackend     string `env:"VCS_BACKEND,default=cli"`
	WorkDir        string `env:"WORK_DIR,default=."`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
}

// Load reads Config from the process environment and validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	if _, err := domain.ParseRepository(c.Repository); err != nil {
		errs = append(errs, fmt.Errorf("GITHUB_REPOSITORY: %w", err))
	}

	appFields := 0
	for _, set := range []bool{c.AppID != 0, c.InstallationID != 0, c.PrivateKeyPath != ""} {
		if set {
			appFields++
		}
	}
	switch {
	case appFields > 0 && appFields < 3:
		errs = append(errs, errors.New("GITHUB_APP_ID, GITHUB_INSTALLATION_ID and GITHUB_APP_PRIVATE_KEY_PATH must be set together"))
	case appFields == 0 && c.Token == "":
		errs = append(errs, errors.New("github token required\nProvide GITHUB_TOKEN or GitHub App credentials"))
	}

	if len(c.DescriptorPaths) == 0 {
		errs = append(errs, errors.New("DESCRIPTOR_PATHS must name at least one descriptor"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("PR_PAGE_SIZE must be positive, got %d", c.PageSize))
	}
	if c.VCSBackend != BackendCLI && c.VCSBackend != BackendGoGit {
		errs = append(errs, fmt.Errorf("VCS_BACKEND must be %q or %q, got %q", BackendCLI, BackendGoGit, c.VCSBackend))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// RepositoryRef returns the parsed GITHUB_REPOSITORY. Call after Validate.
func (c *Config) RepositoryRef() domain.Repository {
	//nolint:errcheck // Validated by Validate
	repo, _ := domain.ParseRepository(c.Repository)
	return repo
}

// Identity returns the configured committer.
func (c *Config) Identity() domain.Identity {
	return domain.Identity{Name: c.CommitterName, Email: c.CommitterEmail}
}

// SlogLevel parses LOG_LEVEL.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
