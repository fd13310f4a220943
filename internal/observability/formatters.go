// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/group-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResult outputs a human-readable summary of an assignment run.
func (p *Printer) PrintResult(result *types.AssignResult) {
	if result == nil {
		return
	}
	p.PrintAssignments(result.Assignments)
	p.PrintCreatedGroups(result.CreatedGroups)
	p.PrintTopicAssignments(result.TopicAssignments)
	p.PrintIssues(result.Issues)
}

// PrintAssignments outputs the students placed during a run.
func (p *Printer) PrintAssignments(assignments []types.Assignment) {
	if len(assignments) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Placed %d students:\n\n", len(assignments)))

	count := min(len(assignments), maxItemsToShow)
	for i := 0; i < count; i++ {
		a := assignments[i]
		sb.WriteString(fmt.Sprintf("• %s → %s\n", a.StudentName, a.GroupName))
		sb.WriteString(fmt.Sprintf("  [%s]\n", a.Role))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(assignments) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more placements", len(assignments)-maxItemsToShow))
	}

	p.printBox("STUDENT PLACEMENTS", sb.String())
}

// PrintCreatedGroups outputs the groups formed from leftover students.
func (p *Printer) PrintCreatedGroups(groups []types.GroupSnapshot) {
	if len(groups) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Created %d groups:\n\n", len(groups)))

	count := min(len(groups), maxItemsToShow)
	for i := 0; i < count; i++ {
		g := groups[i]
		sb.WriteString(fmt.Sprintf("• %s\n", g.Name))
		sb.WriteString(fmt.Sprintf("  %d members", g.CurrentMembers))
		if g.MajorID != "" {
			sb.WriteString(fmt.Sprintf(", major %s", g.MajorID))
		}
		sb.WriteString("\n")
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(groups) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more groups", len(groups)-maxItemsToShow))
	}

	p.printBox("NEW GROUPS", sb.String())
}

// PrintTopicAssignments outputs the topics handed to groups.
func (p *Printer) PrintTopicAssignments(assignments []types.TopicAssignment) {
	if len(assignments) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Assigned %d topics:\n\n", len(assignments)))

	count := min(len(assignments), maxItemsToShow)
	for i := 0; i < count; i++ {
		a := assignments[i]
		title := a.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", title))
		sb.WriteString(fmt.Sprintf("  Score: %d\n", a.Score))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(assignments) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more topics", len(assignments)-maxItemsToShow))
	}

	p.printBox("TOPIC ASSIGNMENTS", sb.String())
}

// PrintIssues outputs unresolved per-entity conditions.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintIssues(issues []types.Issue) {
	if len(issues) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NOTHING LEFT UNRESOLVED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d unresolved items:\n\n", len(issues)))

	for i, issue := range issues {
		reason := issue.Reason
		if len(reason) > 45 {
			reason = reason[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s %s\n", issue.EntityKind, issue.EntityID))
		sb.WriteString(fmt.Sprintf("  %s\n", reason))
		if i < len(issues)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("UNRESOLVED", sb.String())
}
