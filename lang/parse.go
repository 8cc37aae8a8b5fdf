package lang

import (
	"log/slog"
	"strconv"

	"github.com/ardnew/opdef/lang/lexer"
	"github.com/ardnew/opdef/lang/token"
	"github.com/ardnew/opdef/log"
)

// Parser is the grammar engine: a set of mutually recursive, backtracking
// rules over a token cursor. Each rule either consumes tokens and returns a
// node, returns a clean no-match with the cursor restored, or raises a fatal
// *SyntaxError that no alternative can recover.
//
// A Parser is not safe for concurrent use; the token buffer it holds is
// read-only and may be shared by creating one Parser per goroutine.
type Parser struct {
	cursor

	source   string
	filename string
	logger   log.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithFilename sets the source filename reported in syntax errors.
func WithFilename(name string) Option {
	return func(p *Parser) { p.filename = name }
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// NewParser tokenizes src and returns a Parser positioned at the first
// token.
func NewParser(src string, opts ...Option) *Parser {
	p := &Parser{source: src}
	p.tokens = lexer.Tokenize(src)

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// More reports whether any significant token remains to parse.
func (p *Parser) More() bool { return !p.eof() }

// spanned is implemented by every node through its embedded span base.
type spanned interface {
	attach(owner *Parser, begin, end int)
}

// try wraps a grammar rule with the backtracking contract: the cursor
// position is recorded before the rule body runs; a no-match restores it,
// and a match has its [begin, end) token range attached before returning.
// Fatal syntax errors propagate unchanged, without restoring the cursor,
// since they are not an alternative to try.
//
// This is the single mechanism providing backtracking safety and span
// capture; rule bodies never hand-roll either.
func try[T any, P interface{ *T; spanned }](
	p *Parser,
	rule func(*Parser) (P, error),
) (P, error) {
	begin := p.getpos()

	n, err := rule(p)
	if err != nil {
		return nil, err
	}

	if n == nil {
		p.setpos(begin)

		return nil, nil
	}

	n.attach(p, begin, p.getpos())

	return n, nil
}

// Definition parses one top-level construct: an instruction/op definition,
// a super definition, a macro definition, or a family definition. It
// returns (nil, nil) when no construct begins at the current position,
// leaving the cursor where it was; promoting that to an error is the
// caller's judgement. The alternatives are distinguished by their leading
// keyword, so ordering matters only for efficiency.
func (p *Parser) Definition() (Node, error) {
	if inst, err := try(p, (*Parser).instDef); inst != nil || err != nil {
		return p.parsed(inst, err)
	}

	if sup, err := try(p, (*Parser).superDef); sup != nil || err != nil {
		return p.parsed(sup, err)
	}

	if macro, err := try(p, (*Parser).macroDef); macro != nil || err != nil {
		return p.parsed(macro, err)
	}

	if family, err := try(p, (*Parser).familyDef); family != nil || err != nil {
		return p.parsed(family, err)
	}

	return nil, nil
}

// parsed adapts a typed rule result to the Node interface, short-circuiting
// errors so a typed nil never escapes, and logs successful matches.
func (p *Parser) parsed(n Node, err error) (Node, error) {
	if err != nil {
		return nil, err
	}

	p.logger.Trace("definition parsed",
		slog.String("kind", DefKindName(n)),
		slog.String("name", DefName(n)),
	)

	return n, nil
}

// instDef parses a complete instruction or op definition: a header followed
// by a captured body block. A valid header without a block is always
// malformed, never an alternative.
func (p *Parser) instDef() (*InstDef, error) {
	hdr, err := try(p, (*Parser).instHeader)
	if err != nil || hdr == nil {
		return nil, err
	}

	block, err := p.block()
	if err != nil {
		return nil, err
	}

	return &InstDef{
		Kind:    hdr.kind,
		Name:    hdr.name,
		Inputs:  hdr.inputs,
		Outputs: hdr.outputs,
		Block:   block,
	}, nil
}

// instHeader parses one of:
//
//	inst ( NAME )
//	inst ( NAME , ( inputs -- outputs ) )
//	op ( NAME , ( inputs -- outputs ) )
//
// The legacy no-effect form is never allowed for "op". When an effect list
// is present, the next token must be the opening brace of the body; it is
// peeked, not consumed.
func (p *Parser) instHeader() (*instHeader, error) {
	tkn, ok := p.expect(token.Identifier)
	if !ok {
		return nil, nil
	}

	var kind DefKind

	switch tkn.Text {
	case "inst":
		kind = KindInst
	case "op":
		kind = KindOp
	default:
		return nil, nil
	}

	if _, ok := p.expect(token.LParen); !ok {
		return nil, nil
	}

	name, ok := p.expect(token.Identifier)
	if !ok {
		return nil, nil
	}

	if _, ok := p.expect(token.Comma); ok {
		inputs, outputs, err := p.stackEffect()
		if err != nil {
			return nil, err
		}

		if _, ok := p.expect(token.RParen); ok {
			if next, ok := p.peek(); ok && next.Kind == token.LBrace {
				return &instHeader{
					kind:    kind,
					name:    name.Text,
					inputs:  inputs,
					outputs: outputs,
				}, nil
			}
		}

		return nil, nil
	}

	if _, ok := p.expect(token.RParen); ok && kind == KindInst {
		return &instHeader{kind: kind, name: name.Text}, nil
	}

	return nil, nil
}

// stackEffect parses '(' [inputs] '--' [outputs] ')'. The group is not
// optional once entered: any structural failure here is fatal, not a
// no-match.
func (p *Parser) stackEffect() ([]InputEffect, []*StackEffect, error) {
	if _, ok := p.expect(token.LParen); ok {
		inputs, err := p.inputs()
		if err != nil {
			return nil, nil, err
		}

		if _, ok := p.expect(token.MinusMinus); ok {
			outputs, err := p.outputs()
			if err != nil {
				return nil, nil, err
			}

			if _, ok := p.expect(token.RParen); ok {
				return inputs, outputs, nil
			}
		}
	}

	return nil, nil, p.syntaxError("expected stack effect")
}

// inputs parses input (',' input)* by right recursion. A list remains valid
// when only its head matches: the trailing comma and failed rest are
// rewound.
func (p *Parser) inputs() ([]InputEffect, error) {
	here := p.getpos()

	inp, err := p.input()
	if err != nil {
		return nil, err
	}

	if inp == nil {
		p.setpos(here)

		return nil, nil
	}

	near := p.getpos()

	if _, ok := p.expect(token.Comma); ok {
		rest, err := p.inputs()
		if err != nil {
			return nil, err
		}

		if rest != nil {
			return append([]InputEffect{inp}, rest...), nil
		}
	}

	p.setpos(near)

	return []InputEffect{inp}, nil
}

// input recognizes a cache slot (NAME '/' INTEGER) or a plain stack value
// (NAME).
func (p *Parser) input() (InputEffect, error) {
	cache, err := try(p, (*Parser).cacheEffect)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		return cache, nil
	}

	value, err := try(p, (*Parser).stackValue)
	if err != nil || value == nil {
		return nil, err
	}

	return value, nil
}

// outputs parses output (',' output)* with the same rewind-on-partial-
// failure shape as inputs. Outputs are always plain stack values.
func (p *Parser) outputs() ([]*StackEffect, error) {
	here := p.getpos()

	outp, err := try(p, (*Parser).stackValue)
	if err != nil {
		return nil, err
	}

	if outp == nil {
		p.setpos(here)

		return nil, nil
	}

	near := p.getpos()

	if _, ok := p.expect(token.Comma); ok {
		rest, err := p.outputs()
		if err != nil {
			return nil, err
		}

		if rest != nil {
			return append([]*StackEffect{outp}, rest...), nil
		}
	}

	p.setpos(near)

	return []*StackEffect{outp}, nil
}

// cacheEffect parses NAME '/' INTEGER. The '/' commits: a missing or
// malformed size is fatal.
func (p *Parser) cacheEffect() (*CacheEffect, error) {
	tkn, ok := p.expect(token.Identifier)
	if !ok {
		return nil, nil
	}

	if _, ok := p.expect(token.Divide); !ok {
		return nil, nil
	}

	num, ok := p.expect(token.Number)
	if !ok {
		return nil, p.syntaxError("expected integer")
	}

	size, err := strconv.Atoi(num.Text)
	if err != nil {
		return nil, p.syntaxErrorAt("expected integer", num)
	}

	return &CacheEffect{Name: tkn.Text, Size: size}, nil
}

// stackValue parses a bare NAME as a stack effect.
func (p *Parser) stackValue() (*StackEffect, error) {
	tkn, ok := p.expect(token.Identifier)
	if !ok {
		return nil, nil
	}

	return &StackEffect{Name: tkn.Text}, nil
}

// superDef parses 'super' '(' NAME ')' '=' op ('+' op)* ';'.
func (p *Parser) superDef() (*Super, error) {
	tkn, ok := p.expect(token.Identifier)
	if !ok || tkn.Text != "super" {
		return nil, nil
	}

	if _, ok := p.expect(token.LParen); !ok {
		return nil, nil
	}

	name, ok := p.expect(token.Identifier)
	if !ok {
		return nil, nil
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, nil
	}

	if _, ok := p.expect(token.Equals); !ok {
		return nil, nil
	}

	ops, err := p.ops()
	if err != nil {
		return nil, err
	}

	if ops == nil {
		// Committed past '=': an empty op list is fatal.
		return nil, p.syntaxError("expected op name")
	}

	if _, err := p.require(token.Semi); err != nil {
		return nil, err
	}

	return &Super{Name: name.Text, Ops: ops}, nil
}

// ops parses op ('+' op)*. A '+' not followed by a name ends the list
// silently; the required ';' then rejects anything else.
func (p *Parser) ops() ([]*OpName, error) {
	op, err := try(p, (*Parser).opName)
	if err != nil || op == nil {
		return nil, err
	}

	list := []*OpName{op}

	for {
		if _, ok := p.expect(token.Plus); !ok {
			return list, nil
		}

		op, err := try(p, (*Parser).opName)
		if err != nil {
			return nil, err
		}

		if op != nil {
			list = append(list, op)
		}
	}
}

// opName parses a bare NAME as a micro-op reference.
func (p *Parser) opName() (*OpName, error) {
	tkn, ok := p.expect(token.Identifier)
	if !ok {
		return nil, nil
	}

	return &OpName{Name: tkn.Text}, nil
}

// macroDef parses 'macro' '(' NAME ')' '=' uop ('+' uop)* ';'.
func (p *Parser) macroDef() (*Macro, error) {
	tkn, ok := p.expect(token.Identifier)
	if !ok || tkn.Text != "macro" {
		return nil, nil
	}

	if _, ok := p.expect(token.LParen); !ok {
		return nil, nil
	}

	name, ok := p.expect(token.Identifier)
	if !ok {
		return nil, nil
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, nil
	}

	if _, ok := p.expect(token.Equals); !ok {
		return nil, nil
	}

	uops, err := p.uops()
	if err != nil {
		return nil, err
	}

	if uops == nil {
		// Committed past '=': an empty uop list is fatal.
		return nil, p.syntaxError("expected op name or cache effect")
	}

	if _, err := p.require(token.Semi); err != nil {
		return nil, err
	}

	return &Macro{Name: name.Text, Uops: uops}, nil
}

// uops parses uop ('+' uop)*. Unlike ops, a dangling '+' is never
// tolerated.
func (p *Parser) uops() ([]UOp, error) {
	uop, err := p.uop()
	if err != nil || uop == nil {
		return nil, err
	}

	list := []UOp{uop}

	for {
		if _, ok := p.expect(token.Plus); !ok {
			return list, nil
		}

		uop, err := p.uop()
		if err != nil {
			return nil, err
		}

		if uop == nil {
			return nil, p.syntaxError("expected op name or cache effect")
		}

		list = append(list, uop)
	}
}

// uop recognizes a cache slot (NAME '/' INTEGER) or a bare op name.
func (p *Parser) uop() (UOp, error) {
	cache, err := try(p, (*Parser).cacheEffect)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		return cache, nil
	}

	op, err := try(p, (*Parser).opName)
	if err != nil || op == nil {
		return nil, err
	}

	return op, nil
}

// familyDef parses 'family' '(' NAME [',' NAME] ')' '=' '{' members '}' ';'.
// The size variable, when the comma is present, must be an identifier.
func (p *Parser) familyDef() (*Family, error) {
	tkn, ok := p.expect(token.Identifier)
	if !ok || tkn.Text != "family" {
		return nil, nil
	}

	if _, ok := p.expect(token.LParen); !ok {
		return nil, nil
	}

	name, ok := p.expect(token.Identifier)
	if !ok {
		return nil, nil
	}

	size := ""

	if _, ok := p.expect(token.Comma); ok {
		stkn, ok := p.expect(token.Identifier)
		if !ok {
			return nil, p.syntaxError("expected identifier")
		}

		size = stkn.Text
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, nil
	}

	if _, ok := p.expect(token.Equals); !ok {
		return nil, nil
	}

	if _, ok := p.expect(token.LBrace); !ok {
		return nil, p.syntaxError("expected '{'")
	}

	members, err := p.members()
	if err != nil {
		return nil, err
	}

	if members == nil {
		return nil, nil
	}

	if _, ok := p.expect(token.RBrace); !ok {
		return nil, nil
	}

	if _, ok := p.expect(token.Semi); !ok {
		return nil, nil
	}

	return &Family{Name: name.Text, Size: size, Members: members}, nil
}

// members parses NAME (',' NAME)*. A trailing comma immediately before the
// closing brace ends the list silently, but any other token after the list
// is fatal, surfacing malformed lists such as {a, b +}.
func (p *Parser) members() ([]string, error) {
	here := p.getpos()

	tkn, ok := p.expect(token.Identifier)
	if !ok {
		p.setpos(here)

		return nil, nil
	}

	members := []string{tkn.Text}

	for {
		if _, ok := p.expect(token.Comma); !ok {
			break
		}

		tkn, ok := p.expect(token.Identifier)
		if !ok {
			break
		}

		members = append(members, tkn.Text)
	}

	if next, ok := p.peek(); !ok || next.Kind != token.RBrace {
		return nil, p.syntaxError("expected ',' or '}'")
	}

	return members, nil
}

// block captures the balanced brace group following a header as opaque
// tokens.
func (p *Parser) block() (*Block, error) {
	return try(p, func(p *Parser) (*Block, error) {
		tokens, err := p.blob()
		if err != nil {
			return nil, err
		}

		return &Block{Tokens: tokens}, nil
	})
}

// blob scans a brace-delimited run of raw tokens without interpreting them.
// The opening '{' starts the counter at one and is included in the capture;
// nesting depth is tracked jointly over the three bracket families in a
// single counter, and the scan stops the instant the counter reaches zero
// on a closing token, which is excluded from the capture. The loop is
// deliberately flat: recursion depth never follows bracket depth here.
func (p *Parser) blob() ([]token.Token, error) {
	open, ok := p.expect(token.LBrace)
	if !ok {
		return nil, p.syntaxError("expected block")
	}

	tokens := []token.Token{open}
	level := 1

	for {
		tkn, ok := p.nextRaw()
		if !ok {
			return nil, p.syntaxErrorAt("unterminated block", open)
		}

		switch {
		case tkn.Kind.Opener():
			level++

		case tkn.Kind.Closer():
			level--
			if level <= 0 {
				return tokens, nil
			}
		}

		tokens = append(tokens, tkn)
	}
}

// require consumes a token of the given kind or raises a fatal syntax
// error. Rules call it only after committing to a construct.
func (p *Parser) require(kind token.Kind) (token.Token, error) {
	tkn, ok := p.expect(kind)
	if !ok {
		return token.Token{}, p.syntaxError("expected " + kind.String())
	}

	return tkn, nil
}

// syntaxError builds a fatal error at the next significant token, or at the
// end of input when none remains.
func (p *Parser) syntaxError(msg string) error {
	e := &SyntaxError{
		Message:  msg,
		Filename: p.filename,
		Source:   p.source,
	}

	if tkn, ok := p.peek(); ok {
		e.Line, e.Column, e.Token = tkn.Line, tkn.Column, tkn.Text
	} else if n := len(p.tokens); n > 0 {
		e.Line, e.Column = p.tokens[n-1].Line, p.tokens[n-1].Column
	}

	return e
}

// syntaxErrorAt builds a fatal error pinned to an already-consumed token.
func (p *Parser) syntaxErrorAt(msg string, tkn token.Token) error {
	return &SyntaxError{
		Message:  msg,
		Filename: p.filename,
		Source:   p.source,
		Line:     tkn.Line,
		Column:   tkn.Column,
		Token:    tkn.Text,
	}
}
