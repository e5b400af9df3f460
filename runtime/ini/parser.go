package ini

import (
	"strings"

	"github.com/aledsdavies/reparse/core/types"
	"github.com/aledsdavies/reparse/runtime/scanner"
)

// scopeKind enumerates the parser's states.
type scopeKind int

const (
	scopeFile scopeKind = iota
	scopeSection
	scopeItem
)

type scope struct {
	kind    scopeKind
	file    *File
	section *Section
	item    *Item
}

type parser struct {
	sc     *scanner.Scanner
	scopes []scope
}

// Parse reads an INI document. The scanner runs with the INI comment
// dialect: ';' and '#' start line comments and block comments are off.
func Parse(fileName string, src []byte) (*File, error) {
	sc := scanner.New(fileName, src,
		scanner.WithLineComment(func(c, _ byte) bool { return c == '#' || c == ';' }),
		scanner.WithoutBlockComments(),
	)

	file := NewFile(fileName)
	p := &parser{sc: sc}
	p.push(scope{kind: scopeFile, file: file})

	for {
		if sc.HasError() {
			break
		}
		tok, ok := sc.GetToken(false)
		if !ok {
			break
		}
		if !p.compileDeclaration(tok) {
			break
		}
	}

	if err, failed := sc.GetError(); failed {
		return nil, err
	}
	return file, nil
}

func (p *parser) push(s scope) {
	p.scopes = append(p.scopes, s)
}

func (p *parser) pop() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *parser) top() scope {
	return p.scopes[len(p.scopes)-1]
}

func (p *parser) compileDeclaration(tok types.Token) bool {
	switch cur := p.top(); cur.kind {
	case scopeFile:
		return p.compileFileScope(cur, tok)
	case scopeSection:
		return p.compileSectionScope(cur, tok)
	case scopeItem:
		return p.compileItemScope(cur, tok)
	default:
		p.sc.SetErrorf(scanner.ErrGrammar, "unexpected scope !! %s", p.sc.FileLocation())
		return false
	}
}

// compileFileScope consumes a [Section] header and enters the section.
func (p *parser) compileFileScope(cur scope, tok types.Token) bool {
	if !tok.MatchesSymbol('[') {
		p.sc.SetErrorf(scanner.ErrGrammar, "expected '[' to open a section %s", p.sc.FileLocation())
		return false
	}

	var name strings.Builder
	for {
		nameTok, ok := p.sc.GetToken(true)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of file %s", p.sc.FileLocation())
			return false
		}
		if nameTok.MatchesSymbol(']') {
			break
		}
		name.WriteString(nameTok.Name())
	}
	if name.Len() == 0 {
		p.sc.SetErrorf(scanner.ErrGrammar, "ini section name is empty %s", p.sc.FileLocation())
		return false
	}

	section := NewSection(name.String())
	if !cur.file.AddSection(name.String(), section) {
		p.sc.SetErrorf(scanner.ErrGrammar, "ini section %s already added !! %s", name.String(), p.sc.FileLocation())
		return false
	}

	p.push(scope{kind: scopeSection, section: section})
	return true
}

// compileSectionScope consumes one Key or +Key left-hand side up to '=',
// allocates the item and enters it. A '[' hands control back to the file
// scope.
func (p *parser) compileSectionScope(cur scope, tok types.Token) bool {
	if tok.MatchesSymbol('[') {
		p.pop()
		p.sc.UngetToken(tok)
		return true
	}

	isList := tok.MatchesSymbol('+')

	nameTok := tok
	if isList {
		next, ok := p.sc.GetToken(true)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of file %s", p.sc.FileLocation())
			return false
		}
		nameTok = next
	}

	var name strings.Builder
	for !nameTok.MatchesSymbol('=') {
		if nameTok.Kind == types.Const {
			p.sc.SetErrorf(scanner.ErrGrammar, "section item name cannot be a const value !! %s", p.sc.FileLocation())
			return false
		}
		name.WriteString(nameTok.Name())
		next, ok := p.sc.GetToken(true)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of file %s", p.sc.FileLocation())
			return false
		}
		nameTok = next
	}

	var item *Item
	if isList {
		existing, ok := cur.section.Item(name.String())
		if ok {
			item = existing
		} else {
			item = NewList()
			cur.section.AddItem(name.String(), item)
		}
	} else {
		if _, exists := cur.section.Item(name.String()); exists {
			p.sc.SetErrorf(scanner.ErrGrammar, "section item %s already added %s", name.String(), p.sc.FileLocation())
			return false
		}
		item = NewSingle()
		cur.section.AddItem(name.String(), item)
	}

	p.push(scope{kind: scopeItem, item: item})
	return true
}

// compileItemScope consumes the right-hand side of the entry being built
// and leaves the item scope.
func (p *parser) compileItemScope(cur scope, tok types.Token) bool {
	item := cur.item

	switch item.Kind() {
	case SingleItem:
		value, ok := p.parseValue(tok)
		if !ok {
			return false
		}
		item.SetSingle(value)
		p.pop()
		return true

	case ListItem:
		value, ok := p.parseValue(tok)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "parse ini section item failed !! %s", p.sc.FileLocation())
			return false
		}
		item.Append(value)
		p.pop()
		return true

	case MapItem:
		if tok.Kind != types.Identifier {
			p.sc.SetErrorf(scanner.ErrGrammar, "map entry must start with an identifier !! %s", p.sc.FileLocation())
			return false
		}
		key := tok.Name()
		if !p.sc.RequireSymbol('=', "ini parse") {
			return false
		}
		next, ok := p.sc.GetToken(false)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of file %s", p.sc.FileLocation())
			return false
		}
		value, ok := p.parseValue(next)
		if !ok {
			return false
		}
		if !item.MapPut(key, value) {
			p.sc.SetErrorf(scanner.ErrGrammar, "repeated key in map item !! %s", p.sc.FileLocation())
			return false
		}
		p.pop()
		return true

	default:
		p.sc.SetErrorf(scanner.ErrGrammar, "unknown item state !! %s", p.sc.FileLocation())
		return false
	}
}

// parseValue reads one value: a nested (map), a nested [list], a constant,
// or a run of identifiers on one line.
func (p *parser) parseValue(tok types.Token) (*Item, bool) {
	startLine := p.sc.Line()

	switch {
	case tok.MatchesSymbol('('):
		item := NewMap()
		if !p.parseMap(item) {
			return nil, false
		}
		return item, true

	case tok.MatchesSymbol('['):
		item := NewList()
		if !p.parseList(item) {
			return nil, false
		}
		return item, true

	case tok.Kind == types.Const:
		return NewString(tok.ConstantValue()), true

	case tok.Kind == types.Identifier:
		// Identifier run: concatenate until a delimiter, a non-identifier
		// or the end of the line.
		var b strings.Builder
		b.WriteString(tok.Name())
		for {
			next, ok := p.sc.GetToken(true)
			if !ok {
				break
			}
			if next.StartLine != startLine || next.Kind != types.Identifier {
				p.sc.UngetToken(next)
				break
			}
			b.WriteString(next.Name())
		}
		return NewString(b.String()), true

	default:
		p.sc.SetErrorf(scanner.ErrGrammar, "unexpected token type %s", p.sc.FileLocation())
		return nil, false
	}
}

// parseMap fills item from (k=v, ...); the opening '(' has been consumed.
func (p *parser) parseMap(item *Item) bool {
	for {
		tok, ok := p.sc.GetToken(false)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of file %s", p.sc.FileLocation())
			return false
		}

		if tok.MatchesSymbol(')') {
			return true
		}
		if tok.MatchesSymbol(',') {
			continue
		}

		keyTok := tok
		var key strings.Builder
		for !keyTok.MatchesSymbol('=') {
			if keyTok.Kind == types.Const {
				p.sc.SetErrorf(scanner.ErrGrammar, "invalid map item name %s : %s", keyTok.ConstantValue(), p.sc.FileLocation())
				return false
			}
			key.WriteString(keyTok.Name())
			next, ok := p.sc.GetToken(true)
			if !ok {
				p.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of file %s", p.sc.FileLocation())
				return false
			}
			keyTok = next
		}

		valueTok, ok := p.sc.GetToken(false)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of file %s", p.sc.FileLocation())
			return false
		}
		value, ok := p.parseValue(valueTok)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "failed to parse section item %s", p.sc.FileLocation())
			return false
		}

		if !item.MapPut(key.String(), value) {
			p.sc.SetErrorf(scanner.ErrGrammar, "repeated key in map item !! %s", p.sc.FileLocation())
			return false
		}
	}
}

// parseList fills item from [v, ...]; the opening '[' has been consumed.
func (p *parser) parseList(item *Item) bool {
	for {
		tok, ok := p.sc.GetToken(false)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "unexpected end of file %s", p.sc.FileLocation())
			return false
		}

		if tok.MatchesSymbol(']') {
			return true
		}
		if tok.MatchesSymbol(',') {
			continue
		}

		value, ok := p.parseValue(tok)
		if !ok {
			p.sc.SetErrorf(scanner.ErrGrammar, "failed to parse section item %s", p.sc.FileLocation())
			return false
		}
		item.Append(value)
	}
}
