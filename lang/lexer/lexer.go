// Package lexer tokenizes instruction definition source text.
//
// The language embeds opaque blocks of C code, so the lexer recognizes a
// C-flavored token set: identifiers, preprocessing numbers, string and
// character literals, comments, preprocessor directives, and punctuation.
// Comments and directives are emitted as ordinary tokens so a captured token
// range can reproduce its source text exactly; the parser cursor decides
// whether to skip them.
package lexer

import (
	"strings"

	"github.com/ardnew/opdef/lang/token"
)

// Lexer scans source text into tokens.
type Lexer struct {
	src  string
	pos  int
	line int
	col  int
}

// New creates a lexer over the given source text.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize returns every token in src, comments and directives included.
func Tokenize(src string) []token.Token {
	l := New(src)

	var tokens []token.Token

	for {
		tkn, ok := l.Next()
		if !ok {
			return tokens
		}

		tokens = append(tokens, tkn)
	}
}

// Next returns the next token, or false when the input is exhausted.
// Whitespace is never a token.
func (l *Lexer) Next() (token.Token, bool) {
	l.skipSpace()

	if l.eof() {
		return token.Token{}, false
	}

	begin, line, col := l.pos, l.line, l.col

	kind := l.scan()

	return token.Token{
		Kind:   kind,
		Text:   l.src[begin:l.pos],
		Begin:  begin,
		End:    l.pos,
		Line:   line,
		Column: col,
	}, true
}

// scan consumes one token and returns its kind. The caller records offsets.
func (l *Lexer) scan() token.Kind {
	ch := l.peek()

	switch {
	case isIdentStart(ch):
		l.scanWhile(isIdentPart)

		return token.Identifier

	case isDigit(ch):
		l.scanNumber()

		return token.Number

	case ch == '"':
		l.scanQuoted('"')

		return token.String

	case ch == '\'':
		l.scanQuoted('\'')

		return token.Character

	case ch == '#':
		l.scanLine()

		return token.Directive

	case ch == '/':
		switch l.peekAt(1) {
		case '/':
			l.scanLine()

			return token.Comment
		case '*':
			l.scanBlockComment()

			return token.Comment
		case '=':
			l.advance()
			l.advance()

			return token.Operator
		default:
			l.advance()

			return token.Divide
		}

	default:
		return l.scanOperator()
	}
}

// scanOperator consumes a punctuation token using maximal munch.
func (l *Lexer) scanOperator() token.Kind {
	single := map[byte]token.Kind{
		'(': token.LParen,
		')': token.RParen,
		'{': token.LBrace,
		'}': token.RBrace,
		'[': token.LBracket,
		']': token.RBracket,
		',': token.Comma,
		';': token.Semi,
		'=': token.Equals,
		'+': token.Plus,
	}

	for _, op := range []string{"<<=", ">>=", "..."} {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.advanceN(len(op))

			return token.Operator
		}
	}

	if strings.HasPrefix(l.src[l.pos:], "--") {
		l.advanceN(2)

		return token.MinusMinus
	}

	for _, op := range []string{
		"->", "++", "<<", ">>", "<=", ">=", "==", "!=",
		"&&", "||", "+=", "-=", "*=", "%=", "&=", "|=", "^=", "##",
	} {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.advanceN(len(op))

			return token.Operator
		}
	}

	ch := l.peek()
	l.advance()

	if kind, ok := single[ch]; ok {
		return kind
	}

	return token.Operator
}

// scanNumber consumes a preprocessing number: a digit followed by any run of
// alphanumerics, underscores, periods, and sign characters attached to an
// exponent marker. Validation is left to the consumer.
func (l *Lexer) scanNumber() {
	l.advance()

	for !l.eof() {
		ch := l.peek()

		switch {
		case isIdentPart(ch) || ch == '.':
			l.advance()

		case (ch == '+' || ch == '-') && isExponent(l.src[l.pos-1]):
			l.advance()

		default:
			return
		}
	}
}

// scanQuoted consumes a quoted literal, honoring backslash escapes. An
// unterminated literal ends at EOF or end of line.
func (l *Lexer) scanQuoted(quote byte) {
	l.advance() // opening quote

	for !l.eof() {
		ch := l.peek()

		if ch == '\\' {
			l.advance()

			if !l.eof() {
				l.advance()
			}

			continue
		}

		if ch == '\n' {
			return
		}

		l.advance()

		if ch == quote {
			return
		}
	}
}

// scanLine consumes through the end of the current line, excluding the
// newline itself.
func (l *Lexer) scanLine() {
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}
}

// scanBlockComment consumes a comment through the closing marker, or to EOF
// when unterminated.
func (l *Lexer) scanBlockComment() {
	l.advance() // '/'
	l.advance() // '*'

	for !l.eof() {
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()

			return
		}

		l.advance()
	}
}

func (l *Lexer) scanWhile(pred func(byte) bool) {
	for !l.eof() && pred(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) skipSpace() {
	for !l.eof() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}

	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}

	return l.src[l.pos+n]
}

func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	l.pos++
}

func (l *Lexer) advanceN(n int) {
	for range n {
		l.advance()
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isExponent(ch byte) bool {
	return ch == 'e' || ch == 'E' || ch == 'p' || ch == 'P'
}
