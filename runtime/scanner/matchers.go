package scanner

import (
	"github.com/aledsdavies/reparse/core/types"
)

// The matchers layer the match-then-unget discipline over GetToken: each
// one fetches a token, tests it, and rewinds on a miss so callers can probe
// alternatives freely. Match* return false silently; Require* also push an
// error.

// MatchIdentifier consumes the next token iff it is the identifier match.
func (s *Scanner) MatchIdentifier(match string) bool {
	tok, ok := s.GetToken(false)
	if !ok {
		return false
	}
	if tok.Kind == types.Identifier && tok.Matches(match) {
		return true
	}
	s.UngetToken(tok)
	return false
}

// MatchSymbol consumes the next token iff it is the one-character symbol
// match.
func (s *Scanner) MatchSymbol(match byte) bool {
	tok, ok := s.GetToken(true)
	if !ok {
		return false
	}
	if tok.MatchesSymbol(match) {
		return true
	}
	s.UngetToken(tok)
	return false
}

// MatchSymbolString consumes the next token iff it is the (possibly
// multi-character) symbol match.
func (s *Scanner) MatchSymbolString(match string) bool {
	tok, ok := s.GetToken(true)
	if !ok {
		return false
	}
	if tok.Kind == types.Symbol && tok.Lexeme == match {
		return true
	}
	s.UngetToken(tok)
	return false
}

// MatchConstInt consumes the next token iff it is an integer constant whose
// rendering equals match.
func (s *Scanner) MatchConstInt(match string) bool {
	tok, ok := s.GetToken(false)
	if !ok {
		return false
	}
	if tok.IsIntConst() && tok.Name() == match {
		return true
	}
	s.UngetToken(tok)
	return false
}

// MatchAnyConstInt consumes the next token iff it is any integer constant.
func (s *Scanner) MatchAnyConstInt() bool {
	tok, ok := s.GetToken(false)
	if !ok {
		return false
	}
	if tok.IsIntConst() {
		return true
	}
	s.UngetToken(tok)
	return false
}

// MatchToken consumes the next token iff cond accepts it.
func (s *Scanner) MatchToken(cond func(types.Token) bool) bool {
	tok, ok := s.GetToken(true)
	if !ok {
		return false
	}
	if cond(tok) {
		return true
	}
	s.UngetToken(tok)
	return false
}

// MatchSemi consumes a ';'.
func (s *Scanner) MatchSemi() bool {
	return s.MatchSymbol(';')
}

// PeekIdentifier reports whether the next token is the identifier match,
// never consuming it.
func (s *Scanner) PeekIdentifier(match string) bool {
	tok, ok := s.GetToken(true)
	if !ok {
		return false
	}
	s.UngetToken(tok)
	return tok.Kind == types.Identifier && tok.Lexeme == match
}

// PeekSymbol reports whether the next token is the one-character symbol
// match, never consuming it.
func (s *Scanner) PeekSymbol(match byte) bool {
	tok, ok := s.GetToken(true)
	if !ok {
		return false
	}
	s.UngetToken(tok)
	return tok.MatchesSymbol(match)
}

// RequireIdentifier is MatchIdentifier with an error on miss.
func (s *Scanner) RequireIdentifier(match, tag string) bool {
	if !s.MatchIdentifier(match) {
		s.SetErrorf(ErrMissing, "missing '%s' in %s : at %s", match, tag, s.Location())
		return false
	}
	return true
}

// RequireSymbol is MatchSymbol with an error on miss.
func (s *Scanner) RequireSymbol(match byte, tag string) bool {
	if !s.MatchSymbol(match) {
		s.SetErrorf(ErrMissing, "missing '%c' in %s : at %s", match, tag, s.Location())
		return false
	}
	return true
}

// RequireSymbolString is MatchSymbolString with an error on miss.
func (s *Scanner) RequireSymbolString(match, tag string) bool {
	if !s.MatchSymbolString(match) {
		s.SetErrorf(ErrMissing, "missing '%s' in %s : at %s", match, tag, s.Location())
		return false
	}
	return true
}

// RequireConstInt is MatchConstInt with an error on miss.
func (s *Scanner) RequireConstInt(match, tag string) bool {
	if !s.MatchConstInt(match) {
		s.SetErrorf(ErrMissing, "missing integer '%s' in %s : at %s", match, tag, s.Location())
		return false
	}
	return true
}

// RequireAnyConstInt is MatchAnyConstInt with an error on miss.
func (s *Scanner) RequireAnyConstInt(tag string) bool {
	if !s.MatchAnyConstInt() {
		s.SetErrorf(ErrMissing, "missing integer in %s : at %s", tag, s.Location())
		return false
	}
	return true
}

// RequireSemi pushes an error naming the offending token when the next
// token is not ';'.
func (s *Scanner) RequireSemi() bool {
	if s.MatchSemi() {
		return true
	}
	if tok, ok := s.GetToken(false); ok {
		s.UngetToken(tok)
		s.SetErrorf(ErrMissing, "missing ';' before '%s' : at %s", tok.Name(), s.Location())
	} else {
		s.SetErrorf(ErrMissing, "missing ';' : at %s", s.Location())
	}
	return false
}

// GetConstInt extracts an int32 from the next token if it is a numeric,
// bool or nil constant, ungetting otherwise. A non-empty tag pushes an error on miss.
func (s *Scanner) GetConstInt(tag string) (int32, bool) {
	if tok, ok := s.GetToken(false); ok {
		if v, ok := tok.ConstInt(); ok {
			return v, true
		}
		s.UngetToken(tok)
	}
	if tag != "" {
		s.SetErrorf(ErrMissing, "missing constant integer : %s : at %s", tag, s.Location())
	}
	return 0, false
}

// GetConstInt64 extracts an int64 from the next token if it is a numeric,
// bool or nil constant, ungetting otherwise. A non-empty tag pushes an error on miss.
func (s *Scanner) GetConstInt64(tag string) (int64, bool) {
	if tok, ok := s.GetToken(false); ok {
		if v, ok := tok.ConstInt64(); ok {
			return v, true
		}
		s.UngetToken(tok)
	}
	if tag != "" {
		s.SetErrorf(ErrMissing, "missing constant integer : %s : at %s", tag, s.Location())
	}
	return 0, false
}
