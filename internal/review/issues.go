package review

import (
	"strings"

	"github.com/sevigo/review-agent/internal/core"
)

// NormalizeIssues turns raw model output into the canonical ordered list
// of bullet lines. The result is never empty: a blank or "no issues"
// answer collapses to the single sentinel line.
func NormalizeIssues(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{core.NoIssuesSentinel}
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	// A literal "no issues found" line overrides everything else.
	for _, line := range lines {
		if strings.EqualFold(line, "no issues found") {
			return []string{core.NoIssuesSentinel}
		}
	}

	issues := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "-") {
			issues = append(issues, line)
		}
	}
	if len(issues) > 0 {
		return issues
	}

	// No bullet lines at all: promote every non-blank line to a bullet.
	for _, line := range lines {
		issues = append(issues, "- "+line)
	}
	return issues
}
