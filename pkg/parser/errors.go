package parser

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// maxSyntaxErrors bounds the error list collected per file; one bad file
// with thousands of ERROR nodes must not flood the report.
const maxSyntaxErrors = 8

// SyntaxError is one syntax failure with a file-relative, 1-based position.
type SyntaxError struct {
	Line   uint32
	Column uint32
	Kind   string // "error" or "missing <kind>"
}

func (e SyntaxError) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Kind)
}

// ParseError reports that a file could not be extracted because its tree
// contains syntax errors. It aborts extraction for that file only.
type ParseError struct {
	File   string
	Errors []SyntaxError
}

func (e *ParseError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s: syntax error", e.File)
	}
	return fmt.Sprintf("%s: syntax error at %s", e.File, e.Errors[0])
}

// FindSyntaxErrors collects ERROR and MISSING nodes from a parse tree.
// Returns nil when the tree is well-formed.
func FindSyntaxErrors(root *ts.Node) []SyntaxError {
	if root == nil || !root.HasError() {
		return nil
	}
	var errs []SyntaxError
	collectSyntaxErrors(root, &errs)
	return errs
}

func collectSyntaxErrors(node *ts.Node, out *[]SyntaxError) {
	if len(*out) >= maxSyntaxErrors {
		return
	}

	pos := node.StartPosition()
	if node.IsError() {
		*out = append(*out, SyntaxError{
			Line:   uint32(pos.Row + 1),
			Column: uint32(pos.Column + 1),
			Kind:   "error",
		})
		return
	}
	if node.IsMissing() {
		*out = append(*out, SyntaxError{
			Line:   uint32(pos.Row + 1),
			Column: uint32(pos.Column + 1),
			Kind:   "missing " + node.Kind(),
		})
		return
	}

	// HasError is true on every ancestor of a broken subtree, so only
	// descend into children that actually contain one.
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.HasError() {
			collectSyntaxErrors(child, out)
		}
	}
}
