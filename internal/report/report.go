// Package report renders triage results as markdown and extracts
// structure back out of rendered reports. Rendered reports double as
// tracker ticket descriptions.
package report

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/logtriage/internal/failures"
)

// Section is one level-2 heading and the raw text that follows it, up to
// the next heading of the same level.
type Section struct {
	Heading string
	Body    string
}

// Builder renders and parses triage reports.
type Builder struct {
	markdown goldmark.Markdown
}

// NewBuilder creates a report builder.
func NewBuilder() *Builder {
	return &Builder{markdown: goldmark.New()}
}

// Render produces a markdown triage report for one stage's failed
// scenarios. An empty failure list renders a short all-clear report.
func (b *Builder) Render(stage string, items []failures.FailedScenario) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Failure triage: %s\n\n", stage)

	if len(items) == 0 {
		sb.WriteString("No failed scenarios found in the most recent run.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "%d failed scenario(s) in the most recent run.\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&sb, "## Scenario: %s\n\n", item.Scenario)
		if item.Timestamp != "" {
			fmt.Fprintf(&sb, "- Time: %s\n", item.Timestamp)
		}
		if item.Category != "" {
			fmt.Fprintf(&sb, "- Category: %s\n", item.Category)
		}
		if item.FilePath != "" {
			fmt.Fprintf(&sb, "- Location: %s:%d\n", item.FilePath, item.Line)
		}
		if item.RootCause != "" {
			fmt.Fprintf(&sb, "- Root cause: %s\n", item.RootCause)
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "```\n%s\n```\n\n", item.Description)
		if len(item.StackTrace) > 0 {
			sb.WriteString("Stack trace:\n\n```\n")
			sb.WriteString(strings.Join(item.StackTrace, "\n"))
			sb.WriteString("\n```\n\n")
		}
	}
	return sb.String()
}

// Title returns the text of the first level-1 heading in a rendered
// report, or "" when the document has none. Used as the ticket summary.
func (b *Builder) Title(markdown string) string {
	source := []byte(markdown)
	doc := b.markdown.Parser().Parse(text.NewReader(source))

	var title string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok && heading.Level == 1 {
			title = headingText(heading, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// Sections walks the document AST and returns one Section per level-2
// heading, each carrying the source text between it and the next level-2
// heading.
func (b *Builder) Sections(markdown string) []Section {
	source := []byte(markdown)
	doc := b.markdown.Parser().Parse(text.NewReader(source))

	var texts []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok && heading.Level == 2 {
			texts = append(texts, headingText(heading, source))
		}
		return ast.WalkContinue, nil
	})

	// Locate each heading in source order so bodies can be sliced out of
	// the raw document between consecutive headings.
	type headingPos struct {
		text  string
		at    int
		after int
	}
	var found []headingPos
	cursor := 0
	for _, t := range texts {
		marker := "## " + t
		idx := strings.Index(markdown[cursor:], marker)
		if idx < 0 {
			continue
		}
		at := cursor + idx
		found = append(found, headingPos{text: t, at: at, after: at + len(marker)})
		cursor = at + len(marker)
	}

	sections := make([]Section, 0, len(found))
	for i, h := range found {
		end := len(markdown)
		if i+1 < len(found) {
			end = found[i+1].at
		}
		sections = append(sections, Section{
			Heading: h.text,
			Body:    strings.TrimSpace(markdown[h.after:end]),
		})
	}
	return sections
}

func headingText(heading *ast.Heading, source []byte) string {
	var sb strings.Builder
	for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			sb.Write(textNode.Segment.Value(source))
		}
	}
	return strings.TrimSpace(sb.String())
}
