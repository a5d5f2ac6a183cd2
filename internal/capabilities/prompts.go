package capabilities

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// System prompts for the reasoning steps.
const (
	triageSystemPrompt = "You triage software issues. Provide a detailed summary including " +
		"title, labels, a concise description of the issue, your analysis of the issue type " +
		"(e.g., bug, feature, documentation), and a suggested priority (e.g., Low, Medium, High) " +
		"with a brief justification."

	planSystemPrompt = "You are an expert software project planner. Based on the provided issue " +
		"details (title, body, labels, triage summary), create a concise, actionable, step-by-step " +
		"plan to guide the resolution of this issue. The plan should outline the logical sequence " +
		"of actions needed, such as '1. Identify affected file(s).', '2. Draft code changes for " +
		"each affected file.', '3. Review solution.'. Focus on a high-level strategy. " +
		"Output the plan as a numbered list and nothing else."

	identifySystemPrompt = "You are an expert software architect. Your task is to identify which " +
		"file(s) in a repository most likely need to be modified to address a given issue. " +
		"You will be provided with the issue details, the resolution plan, and the repository's " +
		"file listing. Output ONLY the full file paths, each on its own line. " +
		"If no files seem to need changes, output 'None'."

	proposeSystemPrompt = "You are an expert software developer. Based on the provided issue " +
		"details, the overall plan, and a list of target files with their current contents, " +
		"propose code solutions. For each file that requires changes, state exactly " +
		"'Changes for `path/to/file.ext`:' followed by the complete proposed content of that file " +
		"in a single markdown code block. To remove a file, state exactly 'Delete `path/to/file.ext`.'. " +
		"If a file does not need changes, state 'No changes needed for `path/to/file.ext`.'. " +
		"If you are revising based on reviewer feedback, incorporate the feedback into the new " +
		"proposals for the same files."

	explainSystemPrompt = "You are a senior engineer writing a short change description for a " +
		"colleague. Given a file's content before and after a change, explain in a few sentences " +
		"what changed and why it addresses the issue. Write plain prose, no headings."
)

// reviewerSystemPrompt builds the per-aspect reviewer instructions.
func reviewerSystemPrompt(aspect string) string {
	return fmt.Sprintf("You are a meticulous code reviewer specializing in %s. "+
		"You will be given issue details, a resolution plan, and proposed file changes. "+
		"Provide a concise review of the proposed changes. Focus on: %s, correctness and "+
		"completeness of the solution regarding the issue, potential bugs or edge cases, "+
		"adherence to best practices for the inferred language, and clarity. "+
		"If the proposed changes are satisfactory, state ONLY 'LGTM!' or 'Satisfactory' or 'Approved'. "+
		"If changes are needed, state 'Needs revision.' first, then list the required revisions "+
		"per file.", aspect, aspect)
}

// issueHeader renders the issue block shared by most prompts.
func issueHeader(rc *workflow.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s/%s\n", rc.IssueRef.Owner, rc.IssueRef.Repo)
	fmt.Fprintf(&b, "Issue #%d: %s\n", rc.IssueRef.Number, rc.Issue.Title)
	fmt.Fprintf(&b, "Labels: %s\n", strings.Join(rc.Issue.Labels, ", "))
	fmt.Fprintf(&b, "Issue Body:\n%s\n", rc.Issue.Body)
	return b.String()
}

// planBlock renders the numbered plan, or a placeholder when absent.
func planBlock(rc *workflow.Context) string {
	if len(rc.Plan) == 0 {
		return "Plan: (none)\n"
	}
	var b strings.Builder
	b.WriteString("Plan:\n")
	for i, step := range rc.Plan {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

// proposalBlock renders the current proposal the way reviewers and the
// final comment see it.
func proposalBlock(ops []workflow.FileOperation) string {
	if len(ops) == 0 {
		return "No changes proposed.\n"
	}
	var b strings.Builder
	for _, op := range ops {
		switch op.Action {
		case workflow.ActionDelete:
			fmt.Fprintf(&b, "Delete `%s`.\n\n", op.Path)
		default:
			fmt.Fprintf(&b, "Changes for `%s`:\n```\n%s\n```\n\n", op.Path, op.Content)
		}
	}
	return b.String()
}

// originalsBlock renders the fetched file contents for the proposer.
func originalsBlock(rc *workflow.Context) string {
	var b strings.Builder
	for _, path := range rc.TargetFiles {
		snapshot, ok := rc.OriginalContents[path]
		if !ok || !snapshot.Exists {
			fmt.Fprintf(&b, "File `%s` does not exist yet and would be created.\n\n", path)
			continue
		}
		fmt.Fprintf(&b, "Current content of `%s`:\n```\n%s\n```\n\n", path, snapshot.Content)
	}
	return b.String()
}
