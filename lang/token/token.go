// Package token defines the lexical token model shared by the lexer and the
// grammar engine.
package token

import "fmt"

// Kind classifies a lexical token.
type Kind int

const (
	// Invalid is the zero Kind. It never appears in a lexed token stream.
	Invalid Kind = iota

	// Identifier is a C-style identifier: [A-Za-z_][A-Za-z0-9_]*.
	Identifier

	// Number is a preprocessing-number lexeme. The lexer does not validate
	// numeric syntax; consumers that need an integer must parse the text and
	// report their own error.
	Number

	// String is a double-quoted string literal, including its quotes.
	String

	// Character is a single-quoted character literal, including its quotes.
	Character

	// Comment is a line (//) or block (/* */) comment. Comments are skipped
	// by the parser cursor unless it reads raw tokens.
	Comment

	// Directive is a preprocessor line beginning with '#', spanning to the
	// end of the line. Like comments, directives are raw tokens.
	Directive

	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]

	Comma      // ,
	Semi       // ;
	Plus       // +
	Divide     // /
	Equals     // =
	MinusMinus // --

	// Operator is any other punctuation sequence. The grammar never inspects
	// these; they exist so captured blocks reproduce their source exactly.
	Operator
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Identifier:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Character:
		return "character"
	case Comment:
		return "comment"
	case Directive:
		return "directive"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case Comma:
		return "','"
	case Semi:
		return "';'"
	case Plus:
		return "'+'"
	case Divide:
		return "'/'"
	case Equals:
		return "'='"
	case MinusMinus:
		return "'--'"
	case Operator:
		return "operator"
	default:
		return "unknown"
	}
}

// Raw reports whether tokens of this kind are normally skipped by the parser
// cursor and only surfaced when reading raw (comments and directives).
func (k Kind) Raw() bool {
	return k == Comment || k == Directive
}

// Opener reports whether the kind opens one of the three bracket families.
func (k Kind) Opener() bool {
	return k == LBrace || k == LParen || k == LBracket
}

// Closer reports whether the kind closes one of the three bracket families.
func (k Kind) Closer() bool {
	return k == RBrace || k == RParen || k == RBracket
}

// Token is a single classified lexeme with its source span.
type Token struct {
	Kind Kind
	Text string

	// Begin and End are byte offsets into the source text, half-open.
	Begin int
	End   int

	// Line and Column locate the first byte, both 1-based.
	Line   int
	Column int
}

// String implements fmt.Stringer for diagnostics.
func (t Token) String() string {
	return fmt.Sprintf("Token{%v, %q, %d:%d}", t.Kind, t.Text, t.Line, t.Column)
}
