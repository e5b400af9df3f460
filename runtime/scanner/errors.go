package scanner

import (
	"fmt"
)

// ErrorKind categorises scan failures
type ErrorKind int

const (
	ErrLexical ErrorKind = iota // overflow, malformed literal
	ErrUnterminated
	ErrCommentImbalance
	ErrGrammar // grammar-shape errors pushed by compilers layered on the scanner
	ErrMissing // a Require* matcher missed
	ErrFatal   // unresolvable reference, host failure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrLexical:
		return "lexical error"
	case ErrUnterminated:
		return "unterminated literal"
	case ErrCommentImbalance:
		return "comment imbalance"
	case ErrGrammar:
		return "grammar error"
	case ErrMissing:
		return "missing token"
	case ErrFatal:
		return "fatal error"
	default:
		return "error"
	}
}

// ScanError is one entry on the scanner's error stack.
type ScanError struct {
	Kind    ErrorKind
	Message string
	File    string
	Line    int
	Column  int
}

// Error implements the error interface. Messages carry their own location
// text; the kind prefixes them.
func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Location returns the position the error was stamped with, formatted the
// way diagnostics report positions.
func (e ScanError) Location() string {
	return fmt.Sprintf("file: '%s' position : %d:%d", e.File, e.Line, e.Column)
}

// SetError pushes an error onto the stack, stamped with the current
// location.
func (s *Scanner) SetError(kind ErrorKind, message string) {
	err := ScanError{
		Kind:    kind,
		Message: message,
		File:    s.cfg.fileName,
		Line:    s.line,
		Column:  s.column(),
	}
	s.logger.Debug("scan error", "kind", kind.String(), "msg", message)
	s.errors = append(s.errors, err)
}

// SetErrorf pushes a formatted error.
func (s *Scanner) SetErrorf(kind ErrorKind, format string, args ...any) {
	s.SetError(kind, fmt.Sprintf(format, args...))
}

// GetError returns the most recent error, if any. The stack is not popped;
// the owner reads it after the parse.
func (s *Scanner) GetError() (ScanError, bool) {
	if len(s.errors) == 0 {
		return ScanError{}, false
	}
	return s.errors[len(s.errors)-1], true
}

// HasError reports whether any error has been pushed.
func (s *Scanner) HasError() bool {
	return len(s.errors) > 0
}

// Errors returns the whole stack, oldest first.
func (s *Scanner) Errors() []ScanError {
	return s.errors
}
