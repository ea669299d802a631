package domain

// PullRequest is the subset of a hosted pull request the workflow reads.
type PullRequest struct {
	Number  int
	Title   string
	HeadRef string
	BaseRef string
	URL     string
}

// NewPullRequest holds the fields needed to open a pull request.
type NewPullRequest struct {
	Title string
	Body  string
	Head  string // owner:branch
	Base  string
}

// Identity is the committer recorded on the update commit.
type Identity struct {
	Name  string
	Email string
}

// HasTitle returns a predicate matching pull requests by exact title.
func HasTitle(title string) func(PullRequest) bool {
	return func(pr PullRequest) bool {
		return pr.Title == title
	}
}
