package capabilities

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

var (
	codeBlockRe  = regexp.MustCompile("(?s)```[a-zA-Z0-9+\\-#.]*[ \t]*\n(.*?)\n```")
	changesForRe = regexp.MustCompile("Changes for `([^`]+)`:")
	deleteRe     = regexp.MustCompile("Delete `([^`]+)`\\.")
	noChangesRe  = regexp.MustCompile("No changes needed for `([^`]+)`\\.")
	numberedRe   = regexp.MustCompile(`^\s*\d+[.)]\s*`)
)

// extractCodeBlock returns the content of the first fenced code block in
// text, or empty when none is present.
func extractCodeBlock(text string) string {
	if m := codeBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// parsePlan turns a numbered-list response into ordered plan steps.
// Numbering prefixes and blank lines are stripped.
func parsePlan(text string) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = numberedRe.ReplaceAllString(line, "")
		if line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

// parseFileList parses the file identification output: one path per
// line, or the literal "None" when the issue needs no file changes.
func parseFileList(text string) []string {
	var paths []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "`")
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "none") {
			return nil
		}
		paths = append(paths, line)
	}
	return paths
}

// parseProposal converts the proposer's markdown into file operations.
// Three section forms are recognized per file: a "Changes for" header
// followed by a code block, a "Delete" statement, and a "No changes
// needed" statement. As a fallback, a bare code block with exactly one
// target file is treated as that file's new content, matching the
// single-file prompt shape.
//
// The returned error carries KindMalformedOutput when the text cannot be
// interpreted as any of these forms.
func parseProposal(text string, targets []string, originals map[string]workflow.FileSnapshot) ([]workflow.FileOperation, error) {
	ops := []workflow.FileOperation{}

	changeLocs := changesForRe.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range changeLocs {
		path := text[loc[2]:loc[3]]
		sectionEnd := len(text)
		if i+1 < len(changeLocs) {
			sectionEnd = changeLocs[i+1][0]
		}
		section := text[loc[1]:sectionEnd]

		content := extractCodeBlock(section)
		if content == "" {
			return nil, workflow.NewError(workflow.KindMalformedOutput, workflow.StageProposed,
				fmt.Errorf("no code block found for %s", path))
		}
		ops = append(ops, workflow.FileOperation{
			Path:    path,
			Action:  actionFor(path, originals),
			Content: content,
		})
	}

	for _, m := range deleteRe.FindAllStringSubmatch(text, -1) {
		ops = append(ops, workflow.FileOperation{Path: m[1], Action: workflow.ActionDelete})
	}

	if len(ops) > 0 {
		return ops, nil
	}

	// All files explicitly left untouched is a valid empty proposal.
	if noChangesRe.MatchString(text) {
		return ops, nil
	}

	// Single-target fallback: a bare code block is the whole file.
	if len(targets) == 1 {
		if content := extractCodeBlock(text); content != "" {
			return []workflow.FileOperation{{
				Path:    targets[0],
				Action:  actionFor(targets[0], originals),
				Content: content,
			}}, nil
		}
	}

	return nil, workflow.NewError(workflow.KindMalformedOutput, workflow.StageProposed,
		fmt.Errorf("proposal contains no recognizable file changes"))
}

// actionFor distinguishes creating a new file from modifying one that
// was fetched.
func actionFor(path string, originals map[string]workflow.FileSnapshot) workflow.FileAction {
	if snapshot, ok := originals[path]; ok && snapshot.Exists {
		return workflow.ActionModify
	}
	return workflow.ActionCreate
}
