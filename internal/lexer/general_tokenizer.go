package lexer

import (
	"fmt"
	"platypus/internal/token"
	"unicode"
)

type GeneralTokenizer struct {
	lexer *Lexer
}

func NewGeneralTokenizer(lexer *Lexer) *GeneralTokenizer {
	return &GeneralTokenizer{lexer: lexer}
}

func (g *GeneralTokenizer) NextToken() token.Token {
	var tok token.Token

	g.lexer.skipWhitespace()

	start := g.lexer.mark()

	if g.lexer.atEOF() {
		return start.token(token.EOF, "")
	}

	switch g.lexer.ch {
	case '=':
		tok = g.lexer.handleCompoundToken2(token.ASSIGN, '=', token.EQ, '>', token.ROCKET)
	case '+':
		tok = start.token(token.PLUS, "+")
	case '-':
		tok = start.token(token.MINUS, "-")
	case '*':
		tok = start.token(token.ASTERISK, "*")
	case '/':
		tok = start.token(token.SLASH, "/")
	case '!':
		tok = g.lexer.handleCompoundToken(token.BANG, '=', token.NOT_EQ)
	case '<':
		tok = g.lexer.handleCompoundToken(token.LT, '=', token.LT_EQ)
	case '>':
		tok = g.lexer.handleCompoundToken(token.GT, '=', token.GT_EQ)
	case '&':
		if g.lexer.peekChar() != '&' {
			return g.lexer.illegal("Unexpected character '&'", start.line, start.column, start.position, "&")
		}
		tok = g.lexer.handleCompoundToken(token.ILLEGAL, '&', token.LOGICAL_AND)
	case '|':
		if g.lexer.peekChar() != '|' {
			return g.lexer.illegal("Unexpected character '|'", start.line, start.column, start.position, "|")
		}
		tok = g.lexer.handleCompoundToken(token.ILLEGAL, '|', token.LOGICAL_OR)
	case ';':
		tok = start.token(token.SEMICOLON, ";")
	case ':':
		tok = start.token(token.COLON, ":")
	case ',':
		tok = start.token(token.COMMA, ",")
	case '.':
		tok = start.token(token.PERIOD, ".")
	case '{':
		tok = start.token(token.LBRACE, "{")
	case '}':
		tok = start.token(token.RBRACE, "}")
	case '(':
		tok = start.token(token.LPAREN, "(")
	case ')':
		tok = start.token(token.RPAREN, ")")
	case '[':
		tok = start.token(token.LBRACKET, "[")
	case ']':
		tok = start.token(token.RBRACKET, "]")
	case '"':
		g.lexer.readChar() // consume the opening "
		return newStringTokenizer(g.lexer, start).NextToken()
	default:
		if isLetter(g.lexer.ch) {
			literal := g.lexer.readIdentifier()
			return start.token(token.LookupIdent(literal), literal)
		} else if isDigit(g.lexer.ch) {
			return start.token(token.NUMBER, g.lexer.readNumber())
		}
		ch := string(g.lexer.ch)
		if !unicode.IsPrint(g.lexer.ch) {
			return g.lexer.illegal(fmt.Sprintf("Unexpected character %U", g.lexer.ch), start.line, start.column, start.position, ch)
		}
		return g.lexer.illegal("Unexpected character '"+ch+"'", start.line, start.column, start.position, ch)
	}

	g.lexer.readChar()
	return tok
}
