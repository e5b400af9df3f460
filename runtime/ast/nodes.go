package ast

import (
	"github.com/aledsdavies/reparse/core/types"
)

// Node is one vertex of a parse result tree. Leaves wrap the token that
// produced them so diagnostics can point back into the source; Group is
// the only interior variant and preserves source order.
type Node interface {
	Children() []Node
	Label() string
}

// IdentifierNode wraps the token matched by a literal rule element: an
// identifier or symbol, or a constant whose lexeme equals the literal.
type IdentifierNode struct {
	Tok types.Token
}

func (n *IdentifierNode) Children() []Node { return nil }
func (n *IdentifierNode) Label() string    { return n.Tok.Name() }
func (n *IdentifierNode) Token() types.Token {
	return n.Tok
}

// SymbolNode wraps a symbol token.
type SymbolNode struct {
	Tok types.Token
}

func (n *SymbolNode) Children() []Node { return nil }
func (n *SymbolNode) Label() string    { return n.Tok.Name() }
func (n *SymbolNode) Token() types.Token {
	return n.Tok
}

// ConstNode wraps a constant token of any constant kind.
type ConstNode struct {
	Tok types.Token
}

func (n *ConstNode) Children() []Node { return nil }
func (n *ConstNode) Label() string    { return n.Tok.Name() }
func (n *ConstNode) Token() types.Token {
	return n.Tok
}

// NumNode is a ConstNode restricted to numeric constants by its builders.
type NumNode struct {
	ConstNode
}

// StringNode is a ConstNode restricted to string constants by its builders.
type StringNode struct {
	ConstNode
}

// GroupNode is an ordered sequence of child nodes. Seq, Star and Plus all
// emit groups.
type GroupNode struct {
	Nodes []Node
}

func (n *GroupNode) Children() []Node { return n.Nodes }
func (n *GroupNode) Label() string    { return "(Group)" }

// Append adds a child, keeping source order.
func (n *GroupNode) Append(child Node) {
	n.Nodes = append(n.Nodes, child)
}

// Len returns the number of children.
func (n *GroupNode) Len() int {
	return len(n.Nodes)
}
