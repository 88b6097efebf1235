package lexer

import (
	"platypus/internal/token"
	"strings"
)

// StringTokenizer reads one double-quoted literal; the opening quote has
// already been consumed.
type StringTokenizer struct {
	lexer *Lexer
	start mark
}

func newStringTokenizer(lexer *Lexer, start mark) *StringTokenizer {
	return &StringTokenizer{lexer: lexer, start: start}
}

func (s *StringTokenizer) NextToken() token.Token {
	var result strings.Builder

	for {
		if s.lexer.atEOF() {
			return s.lexer.illegal("Unterminated string literal", s.start.line, s.start.column, s.start.position, `"`)
		}

		if s.lexer.ch == '"' {
			s.lexer.readChar() // Consume the closing `"`
			break
		}

		if s.lexer.ch == '\\' {
			s.lexer.readChar() // Move to the escaped character
			if s.lexer.atEOF() {
				return s.lexer.illegal("Unterminated string literal", s.start.line, s.start.column, s.start.position, `"`)
			}
			switch s.lexer.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case 'r':
				result.WriteRune('\r')
			case '\\':
				result.WriteRune('\\')
			case '"':
				result.WriteRune('"')
			default:
				result.WriteRune('\\')
				result.WriteRune(s.lexer.ch)
			}
		} else {
			result.WriteRune(s.lexer.ch)
		}

		s.lexer.readChar()
	}

	return s.start.token(token.STRING, result.String())
}
