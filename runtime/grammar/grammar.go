// Package grammar compiles an EBNF-style grammar text into a rule table of
// combinators. One logical line defines one rule:
//
//	<rule-name> ::= body
//
// where body elements are <references>, "literals", [options], {repeats},
// (groups), alternatives separated by '|', and the postfix repeaters '*'
// and '+'. End of line ends the rule.
package grammar

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/reparse/core/types"
	"github.com/aledsdavies/reparse/runtime/ast"
	"github.com/aledsdavies/reparse/runtime/scanner"
)

type state int

const (
	stateGlobal state = iota // between rules, expect '<'
	stateLeft                // reading the rule name
	stateRight               // reading '::=' and the body
)

type compiler struct {
	sc    *scanner.Scanner
	table *ast.RuleTable
	state state

	// Rule construction stack, interior to one compile.
	stack []*ast.Combinator
}

// Parse compiles src into a rule table. The first scanner or grammar error
// aborts the compile and is returned; no partial rule is left behind.
func Parse(fileName string, src []byte, opts ...scanner.Option) (*ast.RuleTable, error) {
	c := &compiler{
		sc:    scanner.New(fileName, src, opts...),
		table: ast.NewRuleTable(),
		state: stateGlobal,
	}

	for {
		if c.sc.HasError() {
			break
		}
		tok, ok := c.sc.GetToken(false)
		if !ok {
			break
		}
		if !c.compileDeclaration(tok) {
			break
		}
	}

	if err, failed := c.sc.GetError(); failed {
		return nil, err
	}
	if len(c.stack) != 0 || c.state != stateGlobal {
		return nil, fmt.Errorf("unexpected end of input inside a rule (%s)", c.sc.FileLocation())
	}
	return c.table, nil
}

// GenerateTree builds a parse driver over a compiled table, rooted at the
// first rule the grammar defined.
func GenerateTree(table *ast.RuleTable) (*ast.Tree, error) {
	names := table.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("rule table is empty")
	}
	return ast.NewTreeFromTable(table, names[0])
}

func (c *compiler) compileDeclaration(tok types.Token) bool {
	switch c.state {
	case stateGlobal:
		return c.parseGlobal(tok)
	case stateLeft:
		return c.parseLeft(tok)
	case stateRight:
		return c.parseRight(tok)
	default:
		c.sc.SetErrorf(scanner.ErrGrammar, "unknown grammar state, failed to parse !! %s", c.sc.FileLocation())
		return false
	}
}

func (c *compiler) parseGlobal(tok types.Token) bool {
	if !tok.MatchesSymbol('<') {
		c.sc.SetErrorf(scanner.ErrGrammar, "grammar line should start with '<' %s", c.sc.FileLocation())
		return false
	}
	c.sc.UngetToken(tok)
	c.state = stateLeft
	return true
}

func (c *compiler) parseLeft(tok types.Token) bool {
	if !tok.MatchesSymbol('<') {
		c.sc.SetErrorf(scanner.ErrGrammar, "grammar line should start with '<' %s", c.sc.FileLocation())
		return false
	}

	name, ok := c.scanRuleName()
	if !ok {
		return false
	}
	if name == "" {
		c.sc.SetErrorf(scanner.ErrGrammar, "grammar rule name cannot be empty %s", c.sc.FileLocation())
		return false
	}

	rule, ok := c.table.AppendRule(name)
	if !ok {
		c.sc.SetErrorf(scanner.ErrGrammar, "grammar rule name %s repeated !! %s", name, c.sc.FileLocation())
		return false
	}

	c.stack = append(c.stack, rule)
	c.state = stateRight
	return true
}

func (c *compiler) parseRight(tok types.Token) bool {
	startLine := c.sc.Line()
	if !(tok.Matches("::") && c.sc.MatchSymbol('=')) {
		c.sc.SetErrorf(scanner.ErrGrammar, "grammar rule must split by '::=' operator %s", c.sc.FileLocation())
		return false
	}

	root := c.stack[len(c.stack)-1]

	if c.isEndOfLine(startLine) {
		c.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of line %s", c.sc.FileLocation())
		return false
	}
	next, ok := c.sc.GetToken(false)
	if !ok {
		c.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of line %s", c.sc.FileLocation())
		return false
	}

	if !c.parseRuleBody(next, root, startLine) {
		return false
	}

	c.stack = c.stack[:len(c.stack)-1]
	c.state = stateGlobal
	return true
}

// scanRuleName concatenates identifier and symbol lexemes up to the
// closing '>'. Rule names like postal-address scan as several tokens.
func (c *compiler) scanRuleName() (string, bool) {
	startLine := c.sc.Line()
	var name strings.Builder
	for {
		tok, ok := c.sc.GetToken(false)
		if !ok {
			c.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of input in rule name %s", c.sc.FileLocation())
			return "", false
		}
		if tok.MatchesSymbol('>') {
			break
		}
		if tok.StartLine != startLine {
			c.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of line %s", c.sc.FileLocation())
			return "", false
		}
		name.WriteString(tok.Name())
	}
	return name.String(), true
}

// parseRuleBody accumulates body elements into out (an empty Seq),
// upgrading to an Alt when it meets '|' at this nesting. The body ends at
// end of line.
func (c *compiler) parseRuleBody(tok types.Token, out *ast.Combinator, startLine int) bool {
	if len(out.SubRules()) != 0 {
		c.sc.SetErrorf(scanner.ErrGrammar, "rule body must be empty before parse !! %s", c.sc.FileLocation())
		return false
	}

	root := ast.NewSeq()
	var orGroup *ast.Combinator  // the Alt, once '|' appears
	var altElem *ast.Combinator  // the alternative currently being filled
	cur := tok
	for {
		elem, ok := c.parseElement(cur)
		if !ok {
			// Keep the element's own error on top; it is the first failure.
			if !c.sc.HasError() {
				c.sc.SetErrorf(scanner.ErrGrammar, "parse grammar rule failed %s", c.sc.FileLocation())
			}
			return false
		}
		if orGroup == nil {
			root.AddRule(elem)
		} else {
			altElem.AddRule(elem)
		}

		if c.isEndOfLine(startLine) {
			break
		}

		if c.sc.MatchSymbol('|') {
			if orGroup == nil {
				// Upgrade: the sequence so far becomes the first
				// alternative.
				orGroup = ast.NewAlt(root)
				root = ast.NewSeq(orGroup)
			}
			altElem = ast.NewSeq()
			orGroup.AddRule(altElem)
		}

		if c.isEndOfLine(startLine) {
			break
		}
		next, ok := c.sc.GetToken(false)
		if !ok {
			break
		}
		cur = next
	}

	for _, sub := range root.SubRules() {
		out.AddRule(sub)
	}
	return true
}

// parseParenBody is parseRuleBody inside '(' ... ')': alternation applies,
// and the closing symbol rather than end of line terminates.
func (c *compiler) parseParenBody(out *ast.Combinator, startLine int) bool {
	root := ast.NewSeq()
	var orGroup *ast.Combinator
	var altElem *ast.Combinator
	for {
		if c.sc.MatchSymbol(')') {
			break
		}
		if c.sc.Line() != startLine {
			c.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of line %s", c.sc.FileLocation())
			return false
		}
		cur, ok := c.sc.GetToken(false)
		if !ok {
			c.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of input %s", c.sc.FileLocation())
			return false
		}

		if cur.MatchesSymbol('|') {
			if orGroup == nil {
				orGroup = ast.NewAlt(root)
				root = ast.NewSeq(orGroup)
			}
			altElem = ast.NewSeq()
			orGroup.AddRule(altElem)
			continue
		}

		elem, ok := c.parseElement(cur)
		if !ok {
			return false
		}
		if orGroup == nil {
			root.AddRule(elem)
		} else {
			altElem.AddRule(elem)
		}
	}

	for _, sub := range root.SubRules() {
		out.AddRule(sub)
	}
	return true
}

// parseElement compiles one body element and its optional same-line '*' or
// '+' postfix.
func (c *compiler) parseElement(tok types.Token) (*ast.Combinator, bool) {
	startLine := tok.StartLine
	var result *ast.Combinator

	switch {
	case tok.Matches("<"):
		name, ok := c.scanRuleName()
		if !ok {
			return nil, false
		}
		if name == "" {
			c.sc.SetErrorf(scanner.ErrGrammar, "grammar rule name cannot be empty %s", c.sc.FileLocation())
			return nil, false
		}
		if _, exists := c.table.Get(name); !exists {
			// Forward reference: plant an empty placeholder the rule's own
			// line will fill.
			c.table.AppendRule(name)
		}
		result = ast.NewRef(name)

	case tok.Matches("["):
		group := ast.NewSeq()
		if !c.parseBracketBody(group, startLine, ']') {
			return nil, false
		}
		result = ast.NewOption(group)

	case tok.Matches("{"):
		group := ast.NewSeq()
		if !c.parseBracketBody(group, startLine, '}') {
			return nil, false
		}
		result = ast.NewStar(group)

	case tok.Matches("("):
		group := ast.NewSeq()
		if !c.parseParenBody(group, startLine) {
			return nil, false
		}
		result = group

	case tok.Kind == types.Const && tok.ConstKind == types.ConstString:
		result = ast.NewLiteral(tok.Str)

	default:
		c.sc.SetErrorf(scanner.ErrGrammar, "invalid rule element '%s' %s", tok.Name(), c.sc.FileLocation())
		return nil, false
	}

	// A '*' or '+' on the same source line wraps the element just parsed.
	if after, ok := c.sc.GetToken(true); ok {
		switch {
		case after.StartLine == startLine && after.Matches("*"):
			result = ast.NewStar(result)
		case after.StartLine == startLine && after.Matches("+"):
			result = ast.NewPlus(result)
		default:
			c.sc.UngetToken(after)
		}
	}

	return result, true
}

// parseBracketBody fills group with elements until the closing symbol.
// Option and repeat brackets take plain sequences; no alternation inside.
func (c *compiler) parseBracketBody(group *ast.Combinator, startLine int, closing byte) bool {
	for {
		if c.sc.MatchSymbol(closing) {
			return true
		}
		if c.sc.Line() != startLine {
			c.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of line %s", c.sc.FileLocation())
			return false
		}
		cur, ok := c.sc.GetToken(false)
		if !ok {
			c.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of input %s", c.sc.FileLocation())
			return false
		}
		elem, ok := c.parseElement(cur)
		if !ok {
			return false
		}
		group.AddRule(elem)
	}
}

// isEndOfLine peeks the next token and reports whether it begins past the
// given line, which ends the current rule body. End of input counts.
func (c *compiler) isEndOfLine(line int) bool {
	tok, ok := c.sc.GetToken(true)
	if !ok {
		return true
	}
	c.sc.UngetToken(tok)
	return tok.StartLine != line
}
