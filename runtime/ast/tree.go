package ast

import (
	"fmt"

	"github.com/aledsdavies/reparse/core/types"
	"github.com/aledsdavies/reparse/runtime/scanner"
)

// Tree is the parse driver: it owns the rule table, drives the scanner
// token by token through the root combinator, and keeps the resulting AST.
// It is the only stateful piece of the engine; combinators themselves carry
// no mutable parse state and receive the scanner through the driver on
// each call.
type Tree struct {
	rules *RuleTable
	root  *Combinator

	rootNode Node

	// Farthest-miss tracking. A combinator failure is ordinary control
	// flow, but when the whole root fails the most advanced miss is the
	// diagnosis worth reporting.
	missExpected string
	missGot      types.Token
	missPos      int
	missAtEOF    bool
}

// NewTree creates a driver around a caller-supplied root combinator.
func NewTree(root *Combinator) *Tree {
	return &Tree{
		rules: NewRuleTable(),
		root:  root,
	}
}

// NewTreeFromTable creates a driver over a compiled rule table, rooted at
// the named rule.
func NewTreeFromTable(table *RuleTable, rootRule string) (*Tree, error) {
	root, ok := table.Get(rootRule)
	if !ok {
		return nil, fmt.Errorf("no rule named '%s' in rule table", rootRule)
	}
	return &Tree{rules: table, root: root}, nil
}

// AddCustom inserts or replaces a rule entry, typically a host-injected
// production such as "a variable reference is any identifier token".
func (t *Tree) AddCustom(name string, c *Combinator) {
	t.rules.Set(name, c)
}

// TryGet looks up a rule by name.
func (t *Tree) TryGet(name string) (*Combinator, bool) {
	return t.rules.Get(name)
}

// Rules returns the driver's rule table.
func (t *Tree) Rules() *RuleTable {
	return t.rules
}

// Root returns the AST root of the most recent successful parse.
func (t *Tree) Root() Node {
	return t.rootNode
}

// Parse scans src and repeatedly applies the root combinator until end of
// input or the first unrecoverable error. The last successful root result
// is kept as the AST root and returned.
func (t *Tree) Parse(fileName string, src []byte, opts ...scanner.Option) (Node, error) {
	sc := scanner.New(fileName, src, opts...)
	return t.ParseWith(sc)
}

// ParseWith runs the parse over a caller-configured scanner.
func (t *Tree) ParseWith(sc *scanner.Scanner) (Node, error) {
	t.rootNode = nil
	t.resetMiss()

	for {
		tok, ok := sc.GetToken(false)
		if !ok {
			break
		}

		node, ok := t.root.Parse(sc, t, tok)
		if err, failed := sc.GetError(); failed {
			return nil, err
		}
		if !ok {
			sc.SetError(scanner.ErrMissing, t.missMessage())
			err, _ := sc.GetError()
			return nil, err
		}
		if sc.Pos() <= tok.StartPos {
			sc.SetErrorf(scanner.ErrFatal, "rule matched without consuming input : at %s", sc.Location())
			err, _ := sc.GetError()
			return nil, err
		}
		t.rootNode = node
		t.resetMiss()
	}

	if err, failed := sc.GetError(); failed {
		return nil, err
	}
	if t.rootNode == nil {
		return nil, fmt.Errorf("input produced no parse result (file: '%s')", sc.FileName())
	}
	return t.rootNode, nil
}

// String renders the AST of the most recent parse as an indented tree.
func (t *Tree) String() string {
	if t.rootNode == nil {
		return ""
	}
	return PrintNodeTree(t.rootNode)
}

func (t *Tree) resetMiss() {
	t.missExpected = ""
	t.missGot = types.Token{}
	t.missPos = -1
	t.missAtEOF = false
}

// noteMiss records a literal mismatch if it is the farthest seen in the
// current root attempt.
func (t *Tree) noteMiss(expected string, got types.Token) {
	if got.StartPos >= t.missPos {
		t.missExpected = expected
		t.missGot = got
		t.missPos = got.StartPos
		t.missAtEOF = false
	}
}

// noteEOF records running out of input while a sequence still expected
// more.
func (t *Tree) noteEOF(expected *Combinator) {
	t.missExpected = expected.String()
	t.missAtEOF = true
}

func (t *Tree) missMessage() string {
	if t.missAtEOF {
		return fmt.Sprintf("missing %s at end of input", quoteExpected(t.missExpected))
	}
	if t.missExpected == "" {
		return "no rule matched the input"
	}
	return fmt.Sprintf("missing '%s' before '%s' : at %s", t.missExpected, t.missGot.Name(), t.missGot.Position())
}

func quoteExpected(s string) string {
	if s == "" {
		return "input"
	}
	return s
}
