package lexer

import (
	"fmt"
	"platypus/internal/token"
	"unicode"
	"unicode/utf8"
)

// ScanError reports the first character the lexer could not turn into a token.
type ScanError struct {
	Message string
	Line    int
	Column  int
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 at EOF, see atEOF
	line         int  // line of ch
	column       int  // column of ch
	currentMode  Tokenizer

	err *ScanError
}

type Tokenizer interface {
	NextToken() token.Token
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.currentMode = NewGeneralTokenizer(l)
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	return l.currentMode.NextToken()
}

// Err returns the scan error behind the last ILLEGAL token, if any.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// Tokenize scans the whole input. The returned slice always ends with exactly
// one EOF token; the first ILLEGAL token aborts scanning with a *ScanError.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	tokens := make([]token.Token, 0, len(input)/4+1)
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			if err := l.Err(); err != nil {
				return nil, err
			}
			return nil, &ScanError{
				Message: fmt.Sprintf("Unexpected character '%s'", tok.Literal),
				Line:    tok.Line,
				Column:  tok.Column,
			}
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) illegal(message string, line, column, position int, literal string) token.Token {
	l.err = &ScanError{Message: message, Line: line, Column: column}
	return token.Token{Type: token.ILLEGAL, Literal: literal, Position: position, Line: line, Column: column}
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	start := l.mark()
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return start.token(t1, literal)
	}
	return start.token(t, string(l.ch))
}

func (l *Lexer) handleCompoundToken2(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
	ch2 rune,
	t2 token.TokenType,
) token.Token {
	start := l.mark()
	peek := l.peekChar()
	if peek == ch1 {
		first := l.ch
		l.readChar()
		return start.token(t1, string(first)+string(l.ch))
	} else if peek == ch2 {
		first := l.ch
		l.readChar()
		return start.token(t2, string(first)+string(l.ch))
	}
	return start.token(t, string(l.ch))
}

// position of a token's first character
type mark struct {
	position int
	line     int
	column   int
}

func (l *Lexer) mark() mark {
	return mark{position: l.position, line: l.line, column: l.column}
}

func (m mark) token(t token.TokenType, literal string) token.Token {
	return token.Token{Type: t, Literal: literal, Position: m.position, Line: m.line, Column: m.column}
}

func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == '/' && l.peekChar() == '/':
			l.skipToLineEnd()
		case !l.atEOF() && unicode.IsSpace(l.ch):
			l.readChar()
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}
}

// atEOF reports whether the input is exhausted. A NUL rune in the source
// is an ordinary (illegal) character, not the end of input.
func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// readChar advances by one UTF-8 rune, updating byte positions and line/column
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber accepts digits with at most one decimal point, and only when a
// digit follows the point. Grouping and exponents are not part of the grammar.
func (l *Lexer) readNumber() string {
	start := l.position
	hasDot := false
	for {
		if isDigit(l.ch) {
			l.readChar()
		} else if l.ch == '.' && !hasDot && isDigit(l.peekChar()) {
			hasDot = true
			l.readChar()
		} else {
			break
		}
	}
	return l.input[start:l.position]
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
