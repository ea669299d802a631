package domain

import (
	"regexp"
)

// RewritePinnedVersion replaces the text of the first <property> element in
// content with version. The tag name is matched case-insensitively and its
// original casing and surrounding whitespace are kept, so nothing else in
// content changes. It returns a PatternNotMatchedError when no element
// matches.
func RewritePinnedVersion(content []byte, property, version string) ([]byte, error) {
	re, err := pinnedVersionPattern(property)
	if err != nil {
		return nil, err
	}

	loc := re.FindSubmatchIndex(content)
	if loc == nil {
		return nil, &PatternNotMatchedError{Property: property}
	}

	// loc[2:4] is the opening tag group, loc[4:6] the closing tag group.
	out := make([]byte, 0, len(content)+len(version))
	out = append(out, content[:loc[3]]...)
	out = append(out, version...)
	out = append(out, content[loc[4]:]...)
	return out, nil
}

func pinnedVersionPattern(property string) (*regexp.Regexp, error) {
	tag := regexp.QuoteMeta(property)
	return regexp.Compile(`(?i)(<` + tag + `>\s*)[\w.\-]+(\s*</` + tag + `>)`)
}

// Outcome is the terminal state of one run.
type Outcome int

const (
	OutcomeUpToDate  Outcome = iota // Descriptors already pin the latest version
	OutcomePRExists                 // An open PR already proposes the update
	OutcomePRCreated                // Descriptors rewritten, branch pushed, PR opened
	OutcomeDryRun                   // Rewrite planned and printed, nothing written
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpToDate:
		return "up-to-date"
	case OutcomePRExists:
		return "pr-exists"
	case OutcomePRCreated:
		return "pr-created"
	case OutcomeDryRun:
		return "dry-run"
	}
	return "unknown"
}
