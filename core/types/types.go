package types

import (
	"fmt"
	"strconv"
)

// TokenKind represents the lexical class of a token.
type TokenKind int

const (
	// Special tokens
	None TokenKind = iota

	Identifier // names, keywords
	Symbol     // punctuation and operators, 1-3 chars
	Const      // typed constant: number, string, char, bool, nil
)

// ConstKind refines Const tokens with the type of their payload.
type ConstKind int

const (
	ConstNone ConstKind = iota
	ConstByte
	ConstInt
	ConstInt64
	ConstBool
	ConstFloat
	ConstDouble
	ConstString
	ConstNil
)

// Pre-computed name lookups for fast debugging
var tokenKindNames = [...]string{
	None:       "None",
	Identifier: "Identifier",
	Symbol:     "Symbol",
	Const:      "Const",
}

var constKindNames = [...]string{
	ConstNone:   "None",
	ConstByte:   "Byte",
	ConstInt:    "Int",
	ConstInt64:  "Int64",
	ConstBool:   "Bool",
	ConstFloat:  "Float",
	ConstDouble: "Double",
	ConstString: "String",
	ConstNil:    "Nil",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) && int(k) >= 0 {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

func (k ConstKind) String() string {
	if int(k) < len(constKindNames) && int(k) >= 0 {
		return constKindNames[k]
	}
	return fmt.Sprintf("ConstKind(%d)", int(k))
}

// Token is a single lexical unit produced by the scanner. It is a plain
// value: copying a Token copies everything the parser needs to unget it
// and re-fetch an identical one.
type Token struct {
	Kind      TokenKind
	ConstKind ConstKind

	// Lexeme is the raw character sequence as scanned. NUL-free.
	Lexeme string

	// Typed payload, valid per ConstKind.
	Int64 int64
	Float float64
	Bool  bool
	Str   string

	// Start of the token in the input, used by UngetToken.
	StartPos  int // 0-based byte offset
	StartLine int // 1-based
}

// SetIdentifier resets the token to an identifier with the given lexeme.
func (t *Token) SetIdentifier(name string) {
	*t = Token{Kind: Identifier, Lexeme: name, StartPos: t.StartPos, StartLine: t.StartLine}
}

// SetSymbol resets the token to a symbol with the given lexeme.
func (t *Token) SetSymbol(sym string) {
	*t = Token{Kind: Symbol, Lexeme: sym, StartPos: t.StartPos, StartLine: t.StartLine}
}

func (t *Token) SetConstBool(v bool) {
	t.Kind = Const
	t.ConstKind = ConstBool
	t.Bool = v
}

func (t *Token) SetConstInt(v int32) {
	t.Kind = Const
	t.ConstKind = ConstInt
	t.Int64 = int64(v)
}

func (t *Token) SetConstInt64(v int64) {
	t.Kind = Const
	t.ConstKind = ConstInt64
	t.Int64 = v
}

func (t *Token) SetConstFloat(v float64) {
	t.Kind = Const
	t.ConstKind = ConstFloat
	t.Float = v
}

func (t *Token) SetConstDouble(v float64) {
	t.Kind = Const
	t.ConstKind = ConstDouble
	t.Float = v
}

func (t *Token) SetConstString(s string) {
	t.Kind = Const
	t.ConstKind = ConstString
	t.Str = s
}

// SetConstChar stores a single-character constant. Char constants share the
// String payload so ConstantValue works uniformly.
func (t *Token) SetConstChar(c byte) {
	t.Kind = Const
	t.ConstKind = ConstString
	t.Str = string(c)
}

func (t *Token) SetConstNil() {
	t.Kind = Const
	t.ConstKind = ConstNil
}

// MatchesSymbol reports whether the token is exactly the one-character
// symbol c.
func (t Token) MatchesSymbol(c byte) bool {
	return t.Kind == Symbol && len(t.Lexeme) == 1 && t.Lexeme[0] == c
}

// Matches reports whether the token is an identifier or symbol with the
// given lexeme.
func (t Token) Matches(s string) bool {
	return (t.Kind == Identifier || t.Kind == Symbol) && t.Lexeme == s
}

// IsBool reports whether the token is a boolean constant.
func (t Token) IsBool() bool {
	return t.ConstKind == ConstBool
}

// Name returns the lexeme for identifiers and symbols and the rendered
// constant value otherwise.
func (t Token) Name() string {
	if t.Kind == Const {
		return t.ConstantValue()
	}
	return t.Lexeme
}

// ConstantValue renders the constant payload as a string. Non-constant
// tokens render as their lexeme.
func (t Token) ConstantValue() string {
	switch t.ConstKind {
	case ConstByte, ConstInt, ConstInt64:
		return strconv.FormatInt(t.Int64, 10)
	case ConstBool:
		if t.Bool {
			return "true"
		}
		return "false"
	case ConstFloat, ConstDouble:
		return strconv.FormatFloat(t.Float, 'g', -1, 64)
	case ConstString:
		return t.Str
	case ConstNil:
		return "nil"
	default:
		return t.Lexeme
	}
}

// ConstInt extracts an int32 from a numeric, bool or nil constant token,
// coercing like the usual C conversions: bool becomes 0/1, nil becomes 0,
// floats truncate. String constants and non-constant tokens report false.
func (t Token) ConstInt() (int32, bool) {
	v, ok := t.ConstInt64()
	return int32(v), ok
}

// ConstInt64 extracts an int64 from any constant token with the same
// coercions as ConstInt.
func (t Token) ConstInt64() (int64, bool) {
	if t.Kind != Const {
		return 0, false
	}
	switch t.ConstKind {
	case ConstByte, ConstInt, ConstInt64:
		return t.Int64, true
	case ConstFloat, ConstDouble:
		return int64(t.Float), true
	case ConstBool:
		if t.Bool {
			return 1, true
		}
		return 0, true
	case ConstNil:
		return 0, true
	}
	return 0, false
}

// ConstBool extracts a bool from any constant token: numbers compare
// against zero, nil is false.
func (t Token) ConstBool() (bool, bool) {
	if t.Kind != Const {
		return false, false
	}
	switch t.ConstKind {
	case ConstByte, ConstInt, ConstInt64:
		return t.Int64 != 0, true
	case ConstFloat, ConstDouble:
		return t.Float != 0, true
	case ConstBool:
		return t.Bool, true
	case ConstNil:
		return false, true
	}
	return false, false
}

// IsIntConst reports whether the token is an integer constant.
func (t Token) IsIntConst() bool {
	return t.Kind == Const && (t.ConstKind == ConstInt || t.ConstKind == ConstInt64)
}

// Equal is structural equality over kind, const kind, lexeme and payload.
// Position is deliberately excluded: the same text scanned at two offsets
// is the same token.
func (t Token) Equal(other Token) bool {
	return t.Kind == other.Kind &&
		t.ConstKind == other.ConstKind &&
		t.Lexeme == other.Lexeme &&
		t.Int64 == other.Int64 &&
		t.Float == other.Float &&
		t.Bool == other.Bool &&
		t.Str == other.Str
}

// Position returns a formatted start position for error reporting.
func (t Token) Position() string {
	return fmt.Sprintf("%d:%d", t.StartLine, t.StartPos)
}
