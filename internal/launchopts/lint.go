package launchopts

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
)

// Issue is a problem found in a launch-options string.
type Issue struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %d:%d %s", i.Severity, i.Line, i.Column, i.Message)
}

// Lint parses opts as a bash command line and reports syntax errors and
// suspicious placeholder use. The client substitutes %command% textually, so
// the check runs on the string as written.
func Lint(opts string) []Issue {
	if strings.TrimSpace(opts) == "" {
		return nil
	}

	p := sitter.NewParser()
	p.SetLanguage(bash.GetLanguage())
	src := []byte(opts)
	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return []Issue{{Line: 1, Column: 1, Severity: "error", Message: fmt.Sprintf("parse failed: %v", err)}}
	}
	defer tree.Close()

	var issues []Issue
	collectSyntaxIssues(tree.RootNode(), src, &issues)

	if n := strings.Count(opts, CommandPlaceholder); n > 1 {
		issues = append(issues, Issue{
			Line:     1,
			Column:   strings.Index(opts, CommandPlaceholder) + 1,
			Severity: "warning",
			Message:  fmt.Sprintf("%s appears %d times; every occurrence is replaced", CommandPlaceholder, n),
		})
	}
	return issues
}

func collectSyntaxIssues(node *sitter.Node, src []byte, issues *[]Issue) {
	if node == nil {
		return
	}
	switch {
	case node.IsMissing():
		*issues = append(*issues, Issue{
			Line:     int(node.StartPoint().Row) + 1,
			Column:   int(node.StartPoint().Column) + 1,
			Severity: "error",
			Message:  fmt.Sprintf("missing %q", node.Type()),
		})
		return
	case node.IsError():
		text := strings.TrimSpace(node.Content(src))
		if len(text) > 32 {
			text = text[:32] + "..."
		}
		*issues = append(*issues, Issue{
			Line:     int(node.StartPoint().Row) + 1,
			Column:   int(node.StartPoint().Column) + 1,
			Severity: "error",
			Message:  fmt.Sprintf("shell syntax error near %q", text),
		})
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectSyntaxIssues(node.Child(i), src, issues)
	}
}
