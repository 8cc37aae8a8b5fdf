package lang

import (
	"github.com/ardnew/opdef/lang/token"
)

// cursor is an integer position over a fully materialized token buffer. It
// provides the primitives the grammar engine drives: mark, rewind, peek, and
// consume. Comments and directives are skipped unless reading raw.
//
// The token buffer is read-only and may be shared; the position is the only
// mutable state, so each concurrent parse needs its own cursor.
type cursor struct {
	tokens []token.Token
	pos    int
}

// getpos returns the current token index.
func (c *cursor) getpos() int { return c.pos }

// setpos rewinds (or advances) the cursor to a previously recorded index.
func (c *cursor) setpos(pos int) { c.pos = pos }

// eof reports whether any non-raw token remains.
func (c *cursor) eof() bool {
	_, ok := c.peek()

	return !ok
}

// peek returns the next non-raw token without consuming anything.
func (c *cursor) peek() (token.Token, bool) {
	for i := c.pos; i < len(c.tokens); i++ {
		if c.tokens[i].Kind.Raw() {
			continue
		}

		return c.tokens[i], true
	}

	return token.Token{}, false
}

// next consumes and returns the next non-raw token, skipping past any raw
// tokens before it.
func (c *cursor) next() (token.Token, bool) {
	for c.pos < len(c.tokens) {
		tkn := c.tokens[c.pos]
		c.pos++

		if tkn.Kind.Raw() {
			continue
		}

		return tkn, true
	}

	return token.Token{}, false
}

// nextRaw consumes and returns the next token of any kind, comments and
// directives included. The blob scanner uses this so captured blocks
// reproduce their source exactly.
func (c *cursor) nextRaw() (token.Token, bool) {
	if c.pos >= len(c.tokens) {
		return token.Token{}, false
	}

	tkn := c.tokens[c.pos]
	c.pos++

	return tkn, true
}

// expect consumes and returns the next token if it has the given kind.
// Otherwise the cursor does not move and expect reports false.
func (c *cursor) expect(kind token.Kind) (token.Token, bool) {
	tkn, ok := c.peek()
	if !ok || tkn.Kind != kind {
		return token.Token{}, false
	}

	return c.next()
}
