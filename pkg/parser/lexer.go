package parser

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

const eof = -1

// Lexer converts gamescript source into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	source  string // Source name attached to locations
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered

	lineStarts []int // byte offset of the first byte of every line
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input, source string) *Lexer {
	l := &Lexer{
		input:      input,
		source:     source,
		length:     len(input),
		lineStarts: []int{0},
	}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			l.lineStarts = append(l.lineStarts, i+1)
		}
	}
	return l
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	if tt := lookupDelimiter(ch); tt > 0 {
		return l.newToken(tt)
	}

	switch {
	case ch == '"':
		return l.scanString()
	case ch == '\'':
		return l.scanChar()
	case isDigit(ch):
		l.backup()
		return l.scanNumber()
	case ch == '-' && isDigit(l.peek()):
		return l.scanNumber()
	}

	l.backup()
	return l.scanSymbol()
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// Location converts a byte offset into a line and column location.
// Columns count runes and start at 1.
func (l *Lexer) Location(offset int) types.Location {
	line := sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	}) - 1
	col := utf8.RuneCountInString(l.input[l.lineStarts[line]:offset]) + 1
	return types.Location{Source: l.source, Line: line + 1, Column: col}
}

// scanString reads a string literal. The opening quote has already been
// consumed.
func (l *Lexer) scanString() Token {
	var sb strings.Builder
	for {
		switch r := l.nextRune(); r {
		case '"':
			return l.literal(TokenString, sb.String())
		case '\\':
			esc, ok := l.escape()
			if !ok {
				return l.error(types.ErrUnsupportedEscape, "unsupported escape sequence in string literal")
			}
			sb.WriteRune(esc)
		case eof:
			return l.error(types.ErrStringNotClosed, "unterminated string literal")
		default:
			sb.WriteRune(r)
		}
	}
}

// scanChar reads a character literal. The opening quote has already been
// consumed.
func (l *Lexer) scanChar() Token {
	r := l.nextRune()
	switch r {
	case eof, '\'':
		return l.error(types.ErrCharNotClosed, "empty or unterminated character literal")
	case '\\':
		esc, ok := l.escape()
		if !ok {
			return l.error(types.ErrUnsupportedEscape, "unsupported escape sequence in character literal")
		}
		r = esc
	}
	if !l.acceptRune('\'') {
		return l.error(types.ErrCharNotClosed, "unterminated character literal")
	}
	return l.literal(TokenChar, string(r))
}

// escape decodes the character following a backslash.
func (l *Lexer) escape() (rune, bool) {
	switch l.nextRune() {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	}
	return 0, false
}

// scanNumber reads an int or real literal. A leading minus sign, if any, has
// already been consumed.
// Format: -?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)
	tt := TokenInt

	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrUnexpectedToken, "missing digits after decimal point")
		}
		tt = TokenReal
	}

	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrUnexpectedToken, "missing exponent digits")
		}
		tt = TokenReal
	}

	if r := l.peek(); r != eof && !isDelimiter(r) {
		l.acceptAll(func(r rune) bool { return !isDelimiter(r) })
		return l.error(types.ErrUnexpectedToken, "malformed number")
	}
	return l.newToken(tt)
}

// scanSymbol reads a symbol: any run of characters up to whitespace, a
// delimiter, a quote or a comment.
func (l *Lexer) scanSymbol() Token {
	for {
		ch := l.nextRune()
		if ch == eof {
			break
		}
		if isDelimiter(ch) {
			l.backup()
			break
		}
	}
	if l.start == l.current {
		l.nextRune()
		return l.error(types.ErrUnexpectedToken, "unexpected character")
	}
	return l.newToken(TokenSymbol)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type: TokenEOF,
		Loc:  l.Location(l.current),
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	if l.err == nil {
		e := types.NewError(code, types.SubsystemParse, message).At(t.Loc)
		l.err = e
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:  tt,
		Value: l.input[l.start:l.current],
		Loc:   l.Location(l.start),
	}
	l.width = 0
	l.start = l.current
	return t
}

// literal emits a token whose value differs from its source text.
func (l *Lexer) literal(tt TokenType, value string) Token {
	t := l.newToken(tt)
	t.Value = value
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) peek() rune {
	r := l.nextRune()
	l.backup()
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// skipWhitespace skips whitespace and ';' comments running to end of line.
func (l *Lexer) skipWhitespace() {
	for {
		l.acceptAll(isWhitespace)
		if !l.acceptRune(';') {
			break
		}
		l.acceptAll(func(r rune) bool { return r != '\n' && r != eof })
	}
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	return r != eof && unicode.IsSpace(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isDelimiter reports whether r ends a symbol or number.
func isDelimiter(r rune) bool {
	return isWhitespace(r) || lookupDelimiter(r) > 0 || r == '"' || r == '\'' || r == ';'
}
