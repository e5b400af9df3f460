package ast

import (
	"fmt"
	"strings"
)

// String renders the combinator in its canonical grammar form. An
// alternation inside a longer sequence prints without parentheses of its
// own, so ( "a" | "b" ) "c" prints as ( "a" | "b" "c" ) and recompiles with
// "c" in the second alternative.
func (c *Combinator) String() string {
	switch c.kind {
	case Literal:
		return fmt.Sprintf("%q", c.literal)
	case Ref:
		return "<" + c.refName + ">"
	case Seq:
		if len(c.children) == 0 {
			return "( )"
		}
		if len(c.children) == 1 {
			return c.children[0].String()
		}
		parts := make([]string, len(c.children))
		for i, child := range c.children {
			parts[i] = child.String()
		}
		return "( " + strings.Join(parts, " ") + " )"
	case Alt:
		parts := make([]string, len(c.children))
		for i, child := range c.children {
			parts[i] = child.String()
		}
		return strings.Join(parts, " | ")
	case Option:
		return "[ " + c.child.String() + " ]"
	case Star:
		return "{ " + c.child.String() + " }"
	case Plus:
		return c.child.String() + "+"
	case Custom:
		return "*custom*"
	default:
		return fmt.Sprintf("*kind(%d)*", int(c.kind))
	}
}

// PrintTree renders an indented depth-first view of any tree shape, given
// accessors for a node's children and label.
func PrintTree[T any](root T, children func(T) []T, label func(T) string) string {
	var b strings.Builder
	printTreeInto(&b, root, children, label, 0)
	return b.String()
}

func printTreeInto[T any](b *strings.Builder, node T, children func(T) []T, label func(T) string, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(label(node))
	b.WriteString("\n")
	for _, child := range children(node) {
		printTreeInto(b, child, children, label, depth+1)
	}
}

// PrintNodeTree renders an AST subtree with PrintTree.
func PrintNodeTree(root Node) string {
	return PrintTree(root,
		func(n Node) []Node { return n.Children() },
		func(n Node) string { return n.Label() })
}
