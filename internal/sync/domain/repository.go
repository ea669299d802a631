package domain

import (
	"fmt"
	"strings"
)

// Repository identifies a hosted repository.
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository splits an "owner/repo" slug, as found in GITHUB_REPOSITORY.
func ParseRepository(slug string) (Repository, error) {
	parts := strings.SplitN(slug, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("invalid repository %q, expected owner/repo", slug)
	}
	return Repository{Owner: parts[0], Name: parts[1]}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// HeadRef returns the cross-repository head reference for branch,
// e.g. "knative:update-quarkus-platform-3.15.1".
func (r Repository) HeadRef(branch string) string {
	return r.Owner + ":" + branch
}
