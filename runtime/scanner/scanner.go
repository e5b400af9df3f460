package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Scanner is a stateful byte cursor with one-step look-back. It produces
// tokens on demand and supports O(1) pushback of the most recent character
// or token, which is what the combinator engine builds its backtracking on.
//
// A Scanner is constructed per parse and discarded afterwards. It is not
// safe for concurrent use.
type Scanner struct {
	input []byte
	pos   int // current byte offset
	line  int // current line, 1-based

	// One-step shadow for UngetChar. Every GetChar refreshes it.
	prevPos  int
	prevLine int

	// Accumulated comment text. Cleared by every newline run that is not
	// immediately trailing a comment.
	comment strings.Builder

	// Error stack, most recent on top.
	errors []ScanError

	cfg    config
	logger *slog.Logger
}

// New creates a Scanner over src. The file name is only used in
// diagnostics; src is the entire input.
func New(fileName string, src []byte, opts ...Option) *Scanner {
	cfg := defaultConfig()
	cfg.fileName = fileName
	for _, opt := range opts {
		opt(&cfg)
	}

	logLevel := slog.LevelInfo
	if os.Getenv("REPARSE_DEBUG_SCANNER") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove timestamp for cleaner output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))

	return &Scanner{
		input:    src,
		pos:      0,
		line:     1,
		prevPos:  0,
		prevLine: 1,
		cfg:      cfg,
		logger:   logger,
	}
}

// FileName returns the name the scanner was constructed with.
func (s *Scanner) FileName() string {
	return s.cfg.fileName
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int {
	return s.pos
}

// Line returns the current 1-based line number.
func (s *Scanner) Line() int {
	return s.line
}

// PeekChar returns the next byte without advancing, 0 at end of input.
func (s *Scanner) PeekChar() byte {
	if s.pos < len(s.input) {
		return s.input[s.pos]
	}
	return 0
}

// at end of input the cursor keeps returning 0 without moving past len+1,
// so the unget shadow stays valid
func (s *Scanner) nextByte() byte {
	var c byte
	if s.pos < len(s.input) {
		c = s.input[s.pos]
	}
	s.pos++
	if s.pos > len(s.input)+1 {
		s.pos = len(s.input) + 1
	}
	return c
}

// GetChar advances one byte. When literal is false, block comments are
// recognised and elided: the elided text accumulates in the comment buffer,
// an end delimiter outside a comment and end of input inside one both push
// errors. When literal is true (inside char or string literals) no comment
// handling occurs.
func (s *Scanner) GetChar(literal bool) byte {
	insideComment := false

	s.prevPos = s.pos
	s.prevLine = s.line

	for {
		c := s.nextByte()
		if insideComment {
			// Record the character as part of the comment.
			s.comment.WriteByte(c)
		}

		if c == '\n' {
			s.line++
		} else if !literal {
			peek := s.PeekChar()
			if s.cfg.beginComment(c, peek) {
				if !insideComment {
					s.ClearComment()
					// Record both delimiter characters.
					s.comment.WriteByte(c)
					s.comment.WriteByte(peek)
					insideComment = true

					// Move past the second delimiter char now, otherwise an
					// end delimiter sharing it would be missed, e.g. /*/
					s.pos++
				}
				continue
			} else if s.cfg.endComment(c, peek) {
				if !insideComment {
					s.ClearComment()
					s.SetError(ErrCommentImbalance, fmt.Sprintf("unexpected '*/' outside of comment : at %s", s.Location()))
				}
				// The delimiter pair always ends a comment.
				insideComment = false

				// First delimiter char already recorded; record the second.
				s.comment.WriteByte(peek)
				s.pos++
				continue
			}
		}

		if insideComment {
			if c == 0 {
				s.ClearComment()
				s.SetError(ErrCommentImbalance, fmt.Sprintf("end of input encountered inside comment : at %s", s.Location()))
				return 0
			}
			continue
		}
		return c
	}
}

// GetLeadingChar skips whitespace and line comments, then returns the next
// significant byte, 0 at end of input. Line-comment text accumulates in the
// comment buffer; a run of blank lines between comments clears it.
func (s *Scanner) GetLeadingChar() byte {
	var trailingCommentNewline byte

	for {
		multipleNewlines := false

		var c byte

		// Skip blanks.
		for {
			c = s.GetChar(false)
			if c == trailingCommentNewline && c != 0 {
				multipleNewlines = true
			}
			if !isWhitespace(c) {
				break
			}
		}

		if !s.cfg.lineComment(c, s.PeekChar()) {
			return c
		}

		// A fresh comment after blank lines replaces the buffer instead of
		// extending it.
		if multipleNewlines {
			s.ClearComment()
		}

		// Record the leading comment character; the loop below gets the rest.
		s.comment.WriteByte(c)

		for {
			c = s.GetChar(true)
			if c == 0 {
				return c
			}
			s.comment.WriteByte(c)
			if isEOL(c) {
				break
			}
		}

		trailingCommentNewline = c

		for {
			c = s.GetChar(false)
			if c == 0 {
				return c
			}
			if c == trailingCommentNewline || !isEOL(c) {
				s.UngetChar()
				break
			}
			s.comment.WriteByte(c)
		}
	}
}

// UngetChar rewinds to the position before the most recent GetChar.
func (s *Scanner) UngetChar() {
	s.pos = s.prevPos
	s.line = s.prevLine
}

// Comment returns the accumulated comment text.
func (s *Scanner) Comment() string {
	return s.comment.String()
}

// ClearComment discards the accumulated comment text.
func (s *Scanner) ClearComment() {
	s.comment.Reset()
}

// Location returns the current position as "line:column" with a 1-based
// column. The column is derived on demand; only diagnostics pay for it.
func (s *Scanner) Location() string {
	return fmt.Sprintf("%d:%d", s.line, s.column())
}

// FileLocation returns the diagnostic header carrying the file name,
// formatted as the toolkit reports positions everywhere.
func (s *Scanner) FileLocation() string {
	return fmt.Sprintf("file: '%s' position : %s", s.cfg.fileName, s.Location())
}

func (s *Scanner) column() int {
	pos := s.pos
	if pos > len(s.input) {
		pos = len(s.input)
	}
	col := 1
	for i := pos - 1; i >= 0; i-- {
		if s.input[i] == '\n' {
			break
		}
		col++
	}
	return col
}

func isEOL(c byte) bool {
	return c == '\n' || c == '\r' || c == 0
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isIdentStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
