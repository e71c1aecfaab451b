package parser

import (
	"fmt"

	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenInt    // 42, -7
	TokenReal   // 3.14, -1e-3
	TokenChar   // 'a', '\n'
	TokenString // "hello"
	TokenSymbol // bind, +, empty?, push-back

	// Grouping symbols
	TokenParenOpen    // (
	TokenParenClose   // )
	TokenBracketOpen  // [
	TokenBracketClose // ]
	TokenBraceOpen    // {
	TokenBraceClose   // }
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenInt:
		return "(int)"
	case TokenReal:
		return "(real)"
	case TokenChar:
		return "(char)"
	case TokenString:
		return "(string)"
	case TokenSymbol:
		return "(symbol)"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenBracketOpen:
		return "["
	case TokenBracketClose:
		return "]"
	case TokenBraceOpen:
		return "{"
	case TokenBraceClose:
		return "}"
	}
	return fmt.Sprintf("(type %d)", tt)
}

// Token represents a lexical token. For chars and strings Value holds the
// decoded text, without quotes or escapes.
type Token struct {
	Type  TokenType
	Value string
	Loc   types.Location
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenChar:
		return fmt.Sprintf("%q", []rune(t.Value)[0])
	case TokenString:
		return fmt.Sprintf("%q", t.Value)
	}
	return fmt.Sprintf("%q", t.Value)
}

// lookupDelimiter returns the token type of a single-character delimiter,
// or 0 if r is not one.
func lookupDelimiter(r rune) TokenType {
	switch r {
	case '(':
		return TokenParenOpen
	case ')':
		return TokenParenClose
	case '[':
		return TokenBracketOpen
	case ']':
		return TokenBracketClose
	case '{':
		return TokenBraceOpen
	case '}':
		return TokenBraceClose
	}
	return 0
}

// closing returns the closing delimiter matching an opening one.
func closing(tt TokenType) TokenType {
	switch tt {
	case TokenParenOpen:
		return TokenParenClose
	case TokenBracketOpen:
		return TokenBracketClose
	case TokenBraceOpen:
		return TokenBraceClose
	}
	return 0
}
