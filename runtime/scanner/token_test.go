package scanner

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aledsdavies/reparse/core/types"
)

// tokenExpectation is the shape assertTokens compares against. Zero-value
// fields that don't apply to a token kind stay zero.
type tokenExpectation struct {
	Kind      types.TokenKind
	ConstKind types.ConstKind
	Lexeme    string
	Int64     int64
	Float     float64
	Bool      bool
	Str       string
	Line      int
}

func scanAll(t *testing.T, input string, noConsts bool) []types.Token {
	t.Helper()
	sc := New("test", []byte(input))
	var tokens []types.Token
	for {
		tok, ok := sc.GetToken(noConsts)
		if !ok {
			break
		}
		tokens = append(tokens, tok)
		if len(tokens) > 10000 {
			t.Fatalf("scanner did not terminate on input %q", input)
		}
	}
	return tokens
}

func assertTokens(t *testing.T, input string, noConsts bool, expected []tokenExpectation) {
	t.Helper()
	tokens := scanAll(t, input, noConsts)

	got := make([]tokenExpectation, len(tokens))
	for i, tok := range tokens {
		got[i] = tokenExpectation{
			Kind:      tok.Kind,
			ConstKind: tok.ConstKind,
			Lexeme:    tok.Lexeme,
			Int64:     tok.Int64,
			Float:     tok.Float,
			Bool:      tok.Bool,
			Str:       tok.Str,
			Line:      tok.StartLine,
		}
	}

	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("token stream mismatch for %q (-want +got):\n%s", input, diff)
	}
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenExpectation
	}{
		{
			name:  "simple",
			input: "foo",
			expected: []tokenExpectation{
				{Kind: types.Identifier, Lexeme: "foo", Line: 1},
			},
		},
		{
			name:  "underscore_and_digits",
			input: "_bar42 x_1",
			expected: []tokenExpectation{
				{Kind: types.Identifier, Lexeme: "_bar42", Line: 1},
				{Kind: types.Identifier, Lexeme: "x_1", Line: 1},
			},
		},
		{
			name:  "bool_promotion",
			input: "true false",
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstBool, Lexeme: "true", Bool: true, Line: 1},
				{Kind: types.Const, ConstKind: types.ConstBool, Lexeme: "false", Line: 1},
			},
		},
		{
			name:  "nil_promotion",
			input: "nil",
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstNil, Lexeme: "nil", Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.input, false, tt.expected)
		})
	}
}

func TestIdentifiersNoConsts(t *testing.T) {
	// With constant promotion suppressed, true/false/nil stay identifiers.
	assertTokens(t, "true false nil", true, []tokenExpectation{
		{Kind: types.Identifier, Lexeme: "true", Line: 1},
		{Kind: types.Identifier, Lexeme: "false", Line: 1},
		{Kind: types.Identifier, Lexeme: "nil", Line: 1},
	})
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenExpectation
	}{
		{
			name:  "integer",
			input: "42",
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstInt64, Lexeme: "42", Int64: 42, Line: 1},
			},
		},
		{
			name:  "signed",
			input: "+5 -17",
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstInt64, Lexeme: "+5", Int64: 5, Line: 1},
				{Kind: types.Const, ConstKind: types.ConstInt64, Lexeme: "-17", Int64: -17, Line: 1},
			},
		},
		{
			name:  "float",
			input: "3.14",
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstDouble, Lexeme: "3.14", Float: 3.14, Line: 1},
			},
		},
		{
			name:  "float_trailing_f_consumed",
			input: "2.5F",
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstDouble, Lexeme: "2.5", Float: 2.5, Line: 1},
			},
		},
		{
			name:  "hex_uppercased",
			input: "0x1f",
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstInt64, Lexeme: "0X1F", Int64: 31, Line: 1},
			},
		},
		{
			name:  "sign_without_digit_is_symbol",
			input: "+ x",
			expected: []tokenExpectation{
				{Kind: types.Symbol, Lexeme: "+", Line: 1},
				{Kind: types.Identifier, Lexeme: "x", Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.input, false, tt.expected)
		})
	}
}

func TestNumbersNoConsts(t *testing.T) {
	// noConsts turns digits into symbols, one per character.
	assertTokens(t, "12", true, []tokenExpectation{
		{Kind: types.Symbol, Lexeme: "1", Line: 1},
		{Kind: types.Symbol, Lexeme: "2", Line: 1},
	})
}

func TestCharLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenExpectation
	}{
		{
			name:  "plain",
			input: "'a'",
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstString, Lexeme: "a", Str: "a", Line: 1},
			},
		},
		{
			name:  "tab_escape",
			input: `'\t'`,
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstString, Lexeme: "\t", Str: "\t", Line: 1},
			},
		},
		{
			name:  "newline_escape",
			input: `'\n'`,
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstString, Lexeme: "\n", Str: "\n", Line: 1},
			},
		},
		{
			name:  "unicode_escape_stores_letter",
			input: `'\u0041'`,
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstString, Lexeme: "u0041", Str: "u", Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.input, false, tt.expected)
		})
	}
}

func TestCharLiteralUnterminated(t *testing.T) {
	sc := New("test", []byte("'ab"))
	tok, ok := sc.GetToken(false)
	if !ok {
		t.Fatal("expected a token")
	}
	if tok.ConstKind != types.ConstString || tok.Str != "a" {
		t.Errorf("got %+v, want char constant 'a'", tok)
	}
	if err, failed := sc.GetError(); !failed {
		t.Error("expected an unterminated-literal error")
	} else if err.Kind != ErrUnterminated {
		t.Errorf("got error kind %v, want ErrUnterminated", err.Kind)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenExpectation
	}{
		{
			name:  "plain",
			input: `"hello"`,
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstString, Lexeme: "hello", Str: "hello", Line: 1},
			},
		},
		{
			name: "newline_escape_resolved",
			// The embedded \n must come out as a real newline; the raw
			// lexeme keeps the backslash.
			input: `"hello\nworld"`,
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstString, Lexeme: `hello\nworld`, Str: "hello\nworld", Line: 1},
			},
		},
		{
			name:  "other_escapes_drop_backslash",
			input: `"a\tb"`,
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstString, Lexeme: `a\tb`, Str: "atb", Line: 1},
			},
		},
		{
			name:  "escaped_quote",
			input: `"a\"b"`,
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstString, Lexeme: `a\"b`, Str: `a"b`, Line: 1},
			},
		},
		{
			name:  "empty",
			input: `""`,
			expected: []tokenExpectation{
				{Kind: types.Const, ConstKind: types.ConstString, Lexeme: "", Str: "", Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.input, false, tt.expected)
		})
	}
}

func TestStringUnterminated(t *testing.T) {
	sc := New("test", []byte("\"abc\nrest"))
	tok, ok := sc.GetToken(false)
	if !ok {
		t.Fatal("expected a token")
	}
	if tok.Str != "abc" {
		t.Errorf("got %q, want truncated value \"abc\"", tok.Str)
	}
	if err, failed := sc.GetError(); !failed {
		t.Error("expected an unterminated-literal error")
	} else if err.Kind != ErrUnterminated {
		t.Errorf("got error kind %v, want ErrUnterminated", err.Kind)
	}
}

func TestSymbols(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenExpectation
	}{
		{
			name:  "single",
			input: "< > ; ,",
			expected: []tokenExpectation{
				{Kind: types.Symbol, Lexeme: "<", Line: 1},
				{Kind: types.Symbol, Lexeme: ">", Line: 1},
				{Kind: types.Symbol, Lexeme: ";", Line: 1},
				{Kind: types.Symbol, Lexeme: ",", Line: 1},
			},
		},
		{
			name:  "two_char_fusion",
			input: "<< != <= >= ++ -- += -= *= /= && || ^^ == ** ~= ::",
			expected: []tokenExpectation{
				{Kind: types.Symbol, Lexeme: "<<", Line: 1},
				{Kind: types.Symbol, Lexeme: "!=", Line: 1},
				{Kind: types.Symbol, Lexeme: "<=", Line: 1},
				{Kind: types.Symbol, Lexeme: ">=", Line: 1},
				{Kind: types.Symbol, Lexeme: "++", Line: 1},
				{Kind: types.Symbol, Lexeme: "--", Line: 1},
				{Kind: types.Symbol, Lexeme: "+=", Line: 1},
				{Kind: types.Symbol, Lexeme: "-=", Line: 1},
				{Kind: types.Symbol, Lexeme: "*=", Line: 1},
				{Kind: types.Symbol, Lexeme: "/=", Line: 1},
				{Kind: types.Symbol, Lexeme: "&&", Line: 1},
				{Kind: types.Symbol, Lexeme: "||", Line: 1},
				{Kind: types.Symbol, Lexeme: "^^", Line: 1},
				{Kind: types.Symbol, Lexeme: "==", Line: 1},
				{Kind: types.Symbol, Lexeme: "**", Line: 1},
				{Kind: types.Symbol, Lexeme: "~=", Line: 1},
				{Kind: types.Symbol, Lexeme: "::", Line: 1},
			},
		},
		{
			name:  "shift_right_extends",
			input: ">> >>>",
			expected: []tokenExpectation{
				{Kind: types.Symbol, Lexeme: ">>", Line: 1},
				{Kind: types.Symbol, Lexeme: ">>>", Line: 1},
			},
		},
		{
			name:  "no_fusion_across_unrelated",
			input: "<a",
			expected: []tokenExpectation{
				{Kind: types.Symbol, Lexeme: "<", Line: 1},
				{Kind: types.Identifier, Lexeme: "a", Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.input, false, tt.expected)
		})
	}
}

func TestMixedExpression(t *testing.T) {
	assertTokens(t, `x >= 100 && name == "joe"`, false, []tokenExpectation{
		{Kind: types.Identifier, Lexeme: "x", Line: 1},
		{Kind: types.Symbol, Lexeme: ">=", Line: 1},
		{Kind: types.Const, ConstKind: types.ConstInt64, Lexeme: "100", Int64: 100, Line: 1},
		{Kind: types.Symbol, Lexeme: "&&", Line: 1},
		{Kind: types.Identifier, Lexeme: "name", Line: 1},
		{Kind: types.Symbol, Lexeme: "==", Line: 1},
		{Kind: types.Const, ConstKind: types.ConstString, Lexeme: "joe", Str: "joe", Line: 1},
	})
}

func TestLineNumbers(t *testing.T) {
	assertTokens(t, "a\nb\n\nc", false, []tokenExpectation{
		{Kind: types.Identifier, Lexeme: "a", Line: 1},
		{Kind: types.Identifier, Lexeme: "b", Line: 2},
		{Kind: types.Identifier, Lexeme: "c", Line: 4},
	})
}

func TestIdentifierOverflow(t *testing.T) {
	long := make([]byte, 40)
	for i := range long {
		long[i] = 'a'
	}
	sc := New("test", long, WithMaxLexeme(16))
	tok, ok := sc.GetToken(false)
	if !ok {
		t.Fatal("expected a token")
	}
	if len(tok.Lexeme) > 16 {
		t.Errorf("lexeme not truncated: %d chars", len(tok.Lexeme))
	}
	if err, failed := sc.GetError(); !failed {
		t.Error("expected an overflow error")
	} else if err.Kind != ErrLexical {
		t.Errorf("got error kind %v, want ErrLexical", err.Kind)
	}
}

func TestUngetTokenRoundTrip(t *testing.T) {
	inputs := []string{
		"foo",
		"42",
		"3.14",
		`"str"`,
		">=",
		"x >= 100",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			sc := New("test", []byte(input))
			for {
				tok, ok := sc.GetToken(false)
				if !ok {
					break
				}
				sc.UngetToken(tok)
				again, ok := sc.GetToken(false)
				if !ok {
					t.Fatalf("re-fetch after unget returned no token for %q", input)
				}
				if !tok.Equal(again) {
					t.Fatalf("unget round trip mismatch: %+v vs %+v", tok, again)
				}
			}
		})
	}
}

func TestUngetTokenIdempotent(t *testing.T) {
	sc := New("test", []byte("a b"))
	tok, _ := sc.GetToken(false)
	sc.UngetToken(tok)
	sc.UngetToken(tok)
	again, _ := sc.GetToken(false)
	if !tok.Equal(again) {
		t.Fatalf("repeated unget broke the stream: %+v vs %+v", tok, again)
	}
}

func TestWhitespaceInvariance(t *testing.T) {
	compact := scanAll(t, `x>=100&&name=="joe"`, false)
	spaced := scanAll(t, "  x\t>= 100 &&\n\n name ==   \"joe\"  ", false)

	if len(compact) != len(spaced) {
		t.Fatalf("token counts differ: %d vs %d", len(compact), len(spaced))
	}
	for i := range compact {
		if !compact[i].Equal(spaced[i]) {
			t.Errorf("token %d differs: %+v vs %+v", i, compact[i], spaced[i])
		}
	}
}

func TestCommentTransparency(t *testing.T) {
	plain := scanAll(t, "a b c d", false)
	commented := scanAll(t, "a // trailing\nb /* inline */ c\n// full line\nd", false)

	if len(plain) != len(commented) {
		t.Fatalf("token counts differ: %d vs %d", len(plain), len(commented))
	}
	for i := range plain {
		if !plain[i].Equal(commented[i]) {
			t.Errorf("token %d differs: %+v vs %+v", i, plain[i], commented[i])
		}
	}
}

func TestLineCountLaw(t *testing.T) {
	input := "a\nb // c\nd /* e\nf */ g\n"
	sc := New("test", []byte(input))
	for {
		if _, ok := sc.GetToken(false); !ok {
			break
		}
	}
	newlines := 0
	for _, c := range []byte(input) {
		if c == '\n' {
			newlines++
		}
	}
	if sc.Line() != 1+newlines {
		t.Errorf("line counter = %d, want %d", sc.Line(), 1+newlines)
	}
}
