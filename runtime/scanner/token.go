package scanner

import (
	"strconv"
	"strings"

	"github.com/aledsdavies/reparse/core/types"
)

// Two-character symbol fusions. ">>" may extend to ">>>".
var twoCharSymbols = map[[2]byte]bool{
	{'<', '<'}: true,
	{'>', '>'}: true,
	{'!', '='}: true,
	{'<', '='}: true,
	{'>', '='}: true,
	{'+', '+'}: true,
	{'-', '-'}: true,
	{'+', '='}: true,
	{'-', '='}: true,
	{'*', '='}: true,
	{'/', '='}: true,
	{'&', '&'}: true,
	{'|', '|'}: true,
	{'^', '^'}: true,
	{'=', '='}: true,
	{'*', '*'}: true,
	{'~', '='}: true,
	{':', ':'}: true,
}

// GetToken scans and returns the next token. ok is false at end of input,
// in which case the cursor is rewound so repeated calls stay at the end.
//
// When noConsts is true numeric, boolean and nil promotion is suppressed
// (digits scan as one-character symbols), which callers use when scanning
// names that may look like constants. String and character literals still
// scan as constants.
func (s *Scanner) GetToken(noConsts bool) (types.Token, bool) {
	c := s.GetLeadingChar()
	if c == 0 {
		s.UngetChar()
		return types.Token{}, false
	}

	tok := types.Token{
		StartPos:  s.prevPos,
		StartLine: s.prevLine,
	}

	p := s.PeekChar()
	switch {
	case isIdentStart(c):
		return s.scanIdentifier(tok, c, noConsts), true

	case !noConsts && (isDigit(c) || ((c == '+' || c == '-') && isDigit(p))):
		return s.scanNumber(tok, c), true

	case c == '\'':
		return s.scanCharLiteral(tok), true

	case c == '"':
		return s.scanString(tok), true

	default:
		return s.scanSymbol(tok, c), true
	}
}

func (s *Scanner) scanIdentifier(tok types.Token, c byte, noConsts bool) types.Token {
	var b strings.Builder
	for {
		b.WriteByte(c)
		if b.Len() > s.cfg.maxLexeme {
			s.SetErrorf(ErrLexical, "identifier length exceeds maximum of %d : at %s", s.cfg.maxLexeme, s.Location())
			break
		}
		c = s.GetChar(false)
		if !isIdentPart(c) {
			break
		}
	}
	s.UngetChar()

	name := b.String()
	if len(name) > s.cfg.maxLexeme {
		name = name[:s.cfg.maxLexeme]
	}
	tok.SetIdentifier(name)

	if !noConsts {
		switch name {
		case "true":
			tok.SetConstBool(true)
		case "false":
			tok.SetConstBool(false)
		case "nil":
			tok.SetConstNil()
		}
	}
	return tok
}

func (s *Scanner) scanNumber(tok types.Token, c byte) types.Token {
	isFloat := false
	isHex := false
	var b strings.Builder

	for {
		if c == '.' {
			isFloat = true
		}
		if c == 'X' || c == 'x' {
			isHex = true
		}

		b.WriteByte(c)
		if b.Len() >= s.cfg.maxLexeme {
			s.SetErrorf(ErrLexical, "number length exceeds maximum of %d : at %s", s.cfg.maxLexeme, s.Location())
			break
		}

		c = upper(s.GetChar(false))
		if !(isDigit(c) ||
			(!isFloat && c == '.') ||
			(!isHex && c == 'X') ||
			(isHex && c >= 'A' && c <= 'F')) {
			break
		}
	}

	// A trailing F is consumed only for floats.
	if !isFloat || c != 'F' {
		s.UngetChar()
	}

	lexeme := b.String()
	if len(lexeme) > s.cfg.maxLexeme {
		lexeme = lexeme[:s.cfg.maxLexeme]
	}
	tok.Lexeme = lexeme

	switch {
	case isFloat:
		v, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			s.SetErrorf(ErrLexical, "malformed number '%s' : at %s", lexeme, s.Location())
		}
		tok.SetConstDouble(v)
	case isHex:
		v, err := strconv.ParseInt(lexeme, 0, 64)
		if err != nil {
			s.SetErrorf(ErrLexical, "malformed hex number '%s' : at %s", lexeme, s.Location())
		}
		tok.SetConstInt64(v)
	default:
		v, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			s.SetErrorf(ErrLexical, "malformed number '%s' : at %s", lexeme, s.Location())
		}
		tok.SetConstInt64(v)
	}
	return tok
}

func (s *Scanner) scanCharLiteral(tok types.Token) types.Token {
	c := s.GetChar(true)

	isUnicode := false
	var escapeLetter byte
	if c == '\\' {
		c = s.GetChar(true)
		switch c {
		case 't':
			c = '\t'
		case 'n':
			c = '\n'
		case 'r':
			c = '\r'
		case 'u', 'x', 'U':
			// 4-character unicode escape, recorded verbatim; the stored
			// value is the escape letter.
			isUnicode = true
			escapeLetter = c
		}
	}

	if isUnicode {
		var raw strings.Builder
		raw.WriteByte(escapeLetter)
		for i := 0; i < 4; i++ {
			raw.WriteByte(s.GetChar(true))
		}
		if s.GetChar(true) != '\'' {
			s.SetErrorf(ErrUnterminated, "unterminated character constant : at %s : %s", s.cfg.fileName, s.Location())
			s.UngetChar()
		}
		tok.Lexeme = raw.String()
		tok.SetConstChar(escapeLetter)
		return tok
	}

	if s.GetChar(true) != '\'' {
		s.SetErrorf(ErrUnterminated, "unterminated character constant : at %s : %s", s.cfg.fileName, s.Location())
		s.UngetChar()
	}
	tok.Lexeme = string(c)
	tok.SetConstChar(c)
	return tok
}

func (s *Scanner) scanString(tok types.Token) types.Token {
	var value strings.Builder
	var raw strings.Builder

	c := s.GetChar(true)
	for c != '"' && !isEOL(c) {
		if c == '\\' {
			raw.WriteByte(c)
			c = s.GetChar(true)
			if isEOL(c) {
				break
			}
			raw.WriteByte(c)
			if c == 'n' {
				// Newline escape sequence; other escapes keep the escaped
				// character as written.
				c = '\n'
			}
		} else {
			raw.WriteByte(c)
		}
		value.WriteByte(c)
		if value.Len() >= s.cfg.maxLexeme {
			s.SetErrorf(ErrLexical, "string constant exceeds maximum of %d characters : at %s : %s",
				s.cfg.maxLexeme, s.cfg.fileName, s.Location())
			c = '"'
			break
		}
		c = s.GetChar(true)
	}

	if c != '"' {
		s.SetErrorf(ErrUnterminated, "unterminated string constant: %s at %s : %s", value.String(), s.cfg.fileName, s.Location())
		s.UngetChar()
	}

	tok.Lexeme = raw.String()
	tok.SetConstString(value.String())
	return tok
}

func (s *Scanner) scanSymbol(tok types.Token, c byte) types.Token {
	var b strings.Builder
	b.WriteByte(c)

	d := s.GetChar(false)
	if twoCharSymbols[[2]byte{c, d}] {
		b.WriteByte(d)
		if c == '>' && d == '>' {
			if s.GetChar(false) == '>' {
				b.WriteByte('>')
			} else {
				s.UngetChar()
			}
		}
	} else {
		s.UngetChar()
	}

	tok.SetSymbol(b.String())
	return tok
}

// UngetToken rewinds the scanner to the position at which tok started.
// Pushback is O(1), cannot fail, and is idempotent for the most recently
// returned token.
func (s *Scanner) UngetToken(tok types.Token) {
	s.pos = tok.StartPos
	s.line = tok.StartLine
}

// GetIdentifier returns the next token if it is an identifier, ungetting
// otherwise.
func (s *Scanner) GetIdentifier(noConsts bool) (types.Token, bool) {
	tok, ok := s.GetToken(noConsts)
	if !ok {
		return types.Token{}, false
	}
	if tok.Kind == types.Identifier {
		return tok, true
	}
	s.UngetToken(tok)
	return types.Token{}, false
}

// GetSymbol returns the next token if it is a symbol, ungetting otherwise.
func (s *Scanner) GetSymbol() (types.Token, bool) {
	tok, ok := s.GetToken(false)
	if !ok {
		return types.Token{}, false
	}
	if tok.Kind == types.Symbol {
		return tok, true
	}
	s.UngetToken(tok)
	return types.Token{}, false
}

// GetTokensUntil collects tokens until cond matches one (inclusive).
// Running out of input pushes an error tagged with debugMessage.
func (s *Scanner) GetTokensUntil(cond func(types.Token) bool, noConsts bool, debugMessage string) []types.Token {
	var tokens []types.Token
	for {
		tok, ok := s.GetToken(noConsts)
		if !ok {
			s.SetErrorf(ErrMissing, "exit early !! %s at %s : %s", debugMessage, s.cfg.fileName, s.Location())
			return tokens
		}
		tokens = append(tokens, tok)
		if cond(tok) {
			break
		}
	}
	return tokens
}

// GetTokensUntilMatch collects tokens until one matches the given symbol
// (inclusive).
func (s *Scanner) GetTokensUntilMatch(match string, noConsts bool, debugMessage string) []types.Token {
	return s.GetTokensUntil(func(t types.Token) bool { return t.Matches(match) }, noConsts, debugMessage)
}

// GetTokensUntilPairMatch collects tokens until the right symbol balances
// an already-open left one, counting nesting.
func (s *Scanner) GetTokensUntilPairMatch(left, right byte, debugMessage string) []types.Token {
	depth := 1
	var tokens []types.Token
	for {
		tok, ok := s.GetToken(false)
		if !ok {
			s.SetErrorf(ErrMissing, "exit early !! %s : at %s : %s", debugMessage, s.cfg.fileName, s.Location())
			return tokens
		}
		tokens = append(tokens, tok)
		if tok.MatchesSymbol(left) {
			depth++
		} else if tok.MatchesSymbol(right) {
			depth--
		}
		if depth == 0 {
			break
		}
	}
	return tokens
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
