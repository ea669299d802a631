package domain

// DefaultProperty is the Maven property that pins the platform version.
const DefaultProperty = "quarkus.platform.version"

// Descriptor holds a build descriptor path and the platform version it
// currently pins.
type Descriptor struct {
	Path    string
	Version string
}

// IsUpToDate reports whether every descriptor pins exactly latest.
// Versions are compared as opaque strings, so "3.15.1" and "3.15.01" differ.
func IsUpToDate(latest string, descriptors []Descriptor) bool {
	if len(descriptors) == 0 {
		return false
	}
	for _, d := range descriptors {
		if d.Version != latest {
			return false
		}
	}
	return true
}

// BranchName returns the branch that carries the update to version.
// Example: "update-quarkus-platform-3.15.1"
func BranchName(version string) string {
	return "update-quarkus-platform-" + version
}

// PRTitle returns the pull request title, which doubles as the commit
// message and PR body.
func PRTitle(version string) string {
	return "chore: update Quarkus platform version to " + version
}
