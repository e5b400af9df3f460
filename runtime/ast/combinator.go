package ast

import (
	"github.com/aledsdavies/reparse/core/types"
	"github.com/aledsdavies/reparse/runtime/scanner"
)

// Kind discriminates the combinator variants.
type Kind int

const (
	Literal Kind = iota // matches one token by lexeme
	Seq                 // ordered conjunction
	Alt                 // ordered first-match disjunction
	Option              // zero or one
	Star                // zero or more, greedy
	Plus                // one or more, greedy
	Ref                 // by-name reference, resolved lazily
	Custom              // host-supplied parse function
)

// ParseFunc is the host extension point: a custom combinator body with the
// same contract as Combinator.Parse.
type ParseFunc func(sc *scanner.Scanner, ctx *Tree, tok types.Token) (Node, bool)

// Combinator is one vertex of a rule graph. All parent→child edges are
// plain pointers; cycles arise only through Ref, which holds a name and
// binds its target on first use. Combinators carry no parse state and must
// be treated as read-only once a parse begins (the lazy Ref binding is the
// single exception, and it is write-once).
type Combinator struct {
	kind        Kind
	definedName string // non-empty iff registered as a named rule

	literal  string        // Literal
	children []*Combinator // Seq, Alt
	child    *Combinator   // Option, Star, Plus
	refName  string        // Ref
	resolved *Combinator   // Ref, bound on first use
	fn       ParseFunc     // Custom
}

// NewLiteral matches only a token whose lexeme equals s.
func NewLiteral(s string) *Combinator {
	return &Combinator{kind: Literal, literal: s}
}

// NewSeq is an ordered conjunction of children.
func NewSeq(children ...*Combinator) *Combinator {
	return &Combinator{kind: Seq, children: children}
}

// NewAlt is an ordered disjunction; the first matching child wins.
func NewAlt(children ...*Combinator) *Combinator {
	return &Combinator{kind: Alt, children: children}
}

// NewOption wraps child so it may match zero or one time.
func NewOption(child *Combinator) *Combinator {
	return &Combinator{kind: Option, child: child}
}

// NewStar wraps child so it may match zero or more times.
func NewStar(child *Combinator) *Combinator {
	return &Combinator{kind: Star, child: child}
}

// NewPlus wraps child so it must match one or more times.
func NewPlus(child *Combinator) *Combinator {
	return &Combinator{kind: Plus, child: child}
}

// NewRef refers to the rule registered under name; the target is looked up
// on first use.
func NewRef(name string) *Combinator {
	return &Combinator{kind: Ref, refName: name}
}

// NewCustom wraps a host parse function.
func NewCustom(fn ParseFunc) *Combinator {
	return &Combinator{kind: Custom, fn: fn}
}

// Kind returns the variant tag.
func (c *Combinator) Kind() Kind {
	return c.kind
}

// SetDefinedName records the rule name this combinator was registered
// under.
func (c *Combinator) SetDefinedName(name string) {
	c.definedName = name
}

// DefinedName returns the registered rule name, empty for anonymous nodes.
func (c *Combinator) DefinedName() string {
	return c.definedName
}

// IsDefined reports whether the combinator is a named rule root.
func (c *Combinator) IsDefined() bool {
	return c.definedName != ""
}

// AddRule appends a structural child to a Seq or Alt.
func (c *Combinator) AddRule(child *Combinator) {
	c.children = append(c.children, child)
}

// SubRules returns the structural children of a Seq or Alt.
func (c *Combinator) SubRules() []*Combinator {
	return c.children
}

// RefName returns the target name of a Ref.
func (c *Combinator) RefName() string {
	return c.refName
}

// Parse attempts to match a prefix of the token stream. tok is the already
// consumed first token of the attempt; the scanner is positioned just after
// it. On success the emitted subtree is returned. On failure the scanner is
// restored to exactly before tok, which is what makes unbounded
// backtracking across siblings safe.
func (c *Combinator) Parse(sc *scanner.Scanner, ctx *Tree, tok types.Token) (Node, bool) {
	switch c.kind {
	case Literal:
		return c.parseLiteral(sc, ctx, tok)
	case Seq:
		return c.parseSeq(sc, ctx, tok)
	case Alt:
		return c.parseAlt(sc, ctx, tok)
	case Option:
		return c.parseOption(sc, ctx, tok)
	case Star:
		return c.parseStar(sc, ctx, tok)
	case Plus:
		return c.parsePlus(sc, ctx, tok)
	case Ref:
		return c.parseRef(sc, ctx, tok)
	case Custom:
		return c.fn(sc, ctx, tok)
	default:
		sc.SetErrorf(scanner.ErrFatal, "unknown combinator kind %d : at %s", int(c.kind), sc.Location())
		return nil, false
	}
}

func (c *Combinator) parseLiteral(sc *scanner.Scanner, ctx *Tree, tok types.Token) (Node, bool) {
	// Lexeme equality, so "100" in a grammar matches the number 100 as well
	// as the identifier-like spellings.
	if tok.Lexeme == c.literal {
		return &IdentifierNode{Tok: tok}, true
	}
	ctx.noteMiss(c.literal, tok)
	sc.UngetToken(tok)
	return nil, false
}

func (c *Combinator) parseSeq(sc *scanner.Scanner, ctx *Tree, tok types.Token) (Node, bool) {
	if len(c.children) == 0 {
		// An unfilled placeholder matches nothing and consumes nothing.
		sc.UngetToken(tok)
		return &GroupNode{}, true
	}
	group := &GroupNode{}
	cur := tok
	for i, child := range c.children {
		if i > 0 {
			next, ok := sc.GetToken(false)
			if !ok {
				// Out of input: the remaining children may all match empty.
				for _, rest := range c.children[i:] {
					if !rest.nullable() {
						ctx.noteEOF(rest)
						sc.UngetToken(tok)
						return nil, false
					}
					group.Append(&GroupNode{})
				}
				return group, true
			}
			cur = next
		}
		node, ok := child.Parse(sc, ctx, cur)
		if !ok {
			// The child restored the cursor to before cur; rewinding to the
			// first token undoes the whole attempt in one step.
			sc.UngetToken(tok)
			return nil, false
		}
		group.Append(node)
	}
	return group, true
}

func (c *Combinator) parseAlt(sc *scanner.Scanner, ctx *Tree, tok types.Token) (Node, bool) {
	for i, child := range c.children {
		if i > 0 {
			// A failed sibling left the cursor before tok; re-fetch and
			// verify we are handing the next sibling the same token.
			next, ok := sc.GetToken(false)
			if !ok || !next.Equal(tok) {
				sc.SetErrorf(scanner.ErrFatal, "backtrack mismatch: expected '%s' got '%s' : at %s", tok.Name(), next.Name(), sc.Location())
				sc.UngetToken(tok)
				return nil, false
			}
		}
		if node, ok := child.Parse(sc, ctx, tok); ok {
			return node, true
		}
	}
	return nil, false
}

func (c *Combinator) parseOption(sc *scanner.Scanner, ctx *Tree, tok types.Token) (Node, bool) {
	if node, ok := c.child.Parse(sc, ctx, tok); ok {
		return node, true
	}
	// The child consumed nothing; an option that matched nothing still
	// succeeds, with an empty emission.
	return &GroupNode{}, true
}

func (c *Combinator) parseStar(sc *scanner.Scanner, ctx *Tree, tok types.Token) (Node, bool) {
	group := &GroupNode{}
	cur := tok
	for {
		node, ok := c.child.Parse(sc, ctx, cur)
		if !ok {
			// Cursor is before cur; the unmatched token belongs to whoever
			// comes after the star.
			break
		}
		group.Append(node)
		next, ok := sc.GetToken(false)
		if !ok {
			break
		}
		cur = next
	}
	return group, true
}

func (c *Combinator) parsePlus(sc *scanner.Scanner, ctx *Tree, tok types.Token) (Node, bool) {
	first, ok := c.child.Parse(sc, ctx, tok)
	if !ok {
		return nil, false
	}
	group := &GroupNode{}
	group.Append(first)
	for {
		next, ok := sc.GetToken(false)
		if !ok {
			break
		}
		node, ok := c.child.Parse(sc, ctx, next)
		if !ok {
			break
		}
		group.Append(node)
	}
	return group, true
}

// nullable reports whether the combinator can match the empty token
// sequence. Refs are conservatively non-nullable; cycles make the general
// answer undecidable without a fixpoint, and the sequence-tail check only
// needs the structural cases.
func (c *Combinator) nullable() bool {
	switch c.kind {
	case Option, Star:
		return true
	case Seq:
		for _, child := range c.children {
			if !child.nullable() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (c *Combinator) parseRef(sc *scanner.Scanner, ctx *Tree, tok types.Token) (Node, bool) {
	if c.resolved == nil {
		target, ok := ctx.TryGet(c.refName)
		if !ok {
			sc.SetErrorf(scanner.ErrFatal, "no rule named '%s' : at %s : %s", c.refName, sc.FileName(), sc.Location())
			sc.UngetToken(tok)
			return nil, false
		}
		c.resolved = target
	}
	return c.resolved.Parse(sc, ctx, tok)
}
