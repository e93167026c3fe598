package parsers

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// collapseWhitespace replaces runs of whitespace with a single space and trims.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// displayText returns the node text with whitespace collapsed.
func displayText(node *sitter.Node, source []byte) string {
	return collapseWhitespace(extractNodeText(node, source))
}

// isComment reports whether the node is a line or block comment.
// Doc comments are comments in the Rust grammar, so they are covered too.
func isComment(node *sitter.Node) bool {
	switch node.Kind() {
	case "line_comment", "block_comment":
		return true
	}
	return false
}

// tokens returns the leaf tokens under node in source order, skipping
// comments and optional trailing commas.
func tokens(node *sitter.Node, source []byte) []string {
	var out []string
	walkTree(node, func(n *sitter.Node) bool {
		if isComment(n) || isTrailingComma(n) {
			return false
		}
		if n.ChildCount() == 0 {
			if t := strings.TrimSpace(extractNodeText(n, source)); t != "" {
				out = append(out, t)
			}
			return false
		}
		return true
	})
	return out
}

// isTrailingComma reports whether n is a comma that closes a list: the last
// token before a closing delimiter, or the last child of its parent (as in
// `where T: Clone,`). The comma of a one-element tuple is significant and kept.
func isTrailingComma(n *sitter.Node) bool {
	if n.Kind() != "," {
		return false
	}
	next := n.NextSibling()
	for next != nil && isComment(next) {
		next = next.NextSibling()
	}
	if next != nil {
		switch next.Kind() {
		case ">", ")", "]", "}":
		default:
			return false
		}
	}

	parent := n.Parent()
	if parent == nil {
		return true
	}
	switch parent.Kind() {
	case "tuple_type", "tuple_expression", "tuple_pattern":
		elems := 0
		for i := 0; i < int(parent.NamedChildCount()); i++ {
			if !isComment(parent.NamedChild(uint(i))) {
				elems++
			}
		}
		return elems > 1
	}
	return true
}

// canonical returns the token form of node: leaf tokens joined by one space.
// Two nodes that differ only in formatting or comments have equal canonical forms.
func canonical(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return strings.Join(tokens(node, source), " ")
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		walkTree(child, visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// firstSyntaxError returns the first ERROR or MISSING node in source order,
// or nil when the tree is clean.
func firstSyntaxError(node *sitter.Node) *sitter.Node {
	if node == nil || !node.HasError() {
		return nil
	}
	var found *sitter.Node
	walkTree(node, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	return found
}

// describeSyntaxError renders a short message for an ERROR or MISSING node.
func describeSyntaxError(node *sitter.Node, source []byte) string {
	if node.IsMissing() {
		return "missing " + node.Kind()
	}
	text := displayText(node, source)
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	if text == "" {
		return "syntax error"
	}
	return "syntax error near " + quote(text)
}

func quote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}
