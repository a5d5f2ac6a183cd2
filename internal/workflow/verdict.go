package workflow

import "strings"

// approvalMarkers are the phrases that classify a free-text reviewer
// judgment as approval. Matching is case-insensitive substring search.
var approvalMarkers = []string{
	"lgtm",
	"looks good",
	"approved",
	"satisfactory",
}

// ClassifyVerdict normalizes a reviewer's free-text judgment to a binary
// outcome. Any text without an approval marker requests revision, so an
// empty or garbled verdict never passes review.
func ClassifyVerdict(text string) VerdictOutcome {
	lowered := strings.ToLower(text)
	for _, marker := range approvalMarkers {
		if strings.Contains(lowered, marker) {
			return VerdictApprove
		}
	}
	return VerdictRevise
}
