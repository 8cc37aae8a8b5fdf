package lang

import (
	"strconv"

	"github.com/ardnew/opdef/lang/token"
)

// Node is a syntax tree node produced by the grammar engine. Every node
// records the half-open token-index range it was built from, used only to
// reproduce the exact source text it was derived from.
type Node interface {
	// Span returns the half-open [begin, end) token-index range of the node.
	Span() (begin, end int)

	// Text reproduces the source text the node was parsed from.
	Text() string

	node()
}

// InputEffect is a closed union over the two input forms of a stack effect
// declaration: a plain stack value (StackEffect) or a fixed-width inline
// cache slot (CacheEffect). Outputs never declare cache slots, so there is
// no output union; outputs are always *StackEffect.
type InputEffect interface {
	Node
	inputEffect()
}

// UOp is a closed union over the element forms of a macro body: a named
// micro-operation (OpName) or an inline cache slot (CacheEffect).
type UOp interface {
	Node
	uop()
}

// DefKind discriminates instruction definitions from op definitions.
type DefKind uint8

const (
	KindInst DefKind = iota // inst
	KindOp                  // op
)

// String returns the DSL keyword for the kind.
func (k DefKind) String() string {
	if k == KindOp {
		return "op"
	}

	return "inst"
}

// span is the common node base: a token-index range plus the parser that
// owns the token buffer. It is attached once, after a rule completes, and is
// immutable afterwards.
type span struct {
	begin int
	end   int
	owner *Parser
}

// Span returns the half-open token-index range of the node.
func (s *span) Span() (begin, end int) { return s.begin, s.end }

// Text reproduces the exact source substring spanned by the node's tokens.
func (s *span) Text() string {
	if s.owner == nil || s.begin >= s.end {
		return ""
	}

	tokens := s.owner.tokens

	return s.owner.source[tokens[s.begin].Begin:tokens[s.end-1].End]
}

// attach records the node's token range. Only the try combinator calls this.
func (s *span) attach(owner *Parser, begin, end int) {
	s.begin, s.end, s.owner = begin, end, owner
}

// StackEffect is a named value an instruction conceptually pushes or pops.
// Whether it is an input or an output is contextual, not tagged.
type StackEffect struct {
	span

	Name string
}

func (*StackEffect) node()        {}
func (*StackEffect) inputEffect() {}

// CacheEffect is a named inline cache slot of fixed width, given in code
// units.
type CacheEffect struct {
	span

	Name string
	Size int
}

func (*CacheEffect) node()        {}
func (*CacheEffect) inputEffect() {}
func (*CacheEffect) uop()         {}

// String formats the effect as it appears in source.
func (c *CacheEffect) String() string {
	return c.Name + "/" + strconv.Itoa(c.Size)
}

// OpName is a bare reference to a named micro-operation inside a super or
// macro body.
type OpName struct {
	span

	Name string
}

func (*OpName) node() {}
func (*OpName) uop()  {}

// Block is an opaque, unparsed run of source tokens captured from a
// brace-delimited body. Its tokens include the opening brace but not the
// final closing brace, and retain comments and directives verbatim. The
// contents are never tokenized further or interpreted here.
type Block struct {
	span

	Tokens []token.Token
}

func (*Block) node() {}

// instHeader is the signature portion of an instruction or op definition.
// It is consumed immediately by the inst rule and never escapes the grammar
// engine.
type instHeader struct {
	span

	kind    DefKind
	name    string
	inputs  []InputEffect
	outputs []*StackEffect
}

func (*instHeader) node() {}

// InstDef is a complete instruction or op definition: a header plus its
// captured body block.
type InstDef struct {
	span

	Kind    DefKind
	Name    string
	Inputs  []InputEffect
	Outputs []*StackEffect
	Block   *Block
}

func (*InstDef) node() {}

// Super is a composite instruction assembled from a non-empty, ordered
// sequence of named ops.
type Super struct {
	span

	Name string
	Ops  []*OpName
}

func (*Super) node() {}

// Macro is a named, non-empty, ordered sequence of micro-ops and inline
// cache slots.
type Macro struct {
	span

	Name string
	Uops []UOp
}

func (*Macro) node() {}

// Family groups instruction variants sharing a cache layout. Size names the
// variable giving the cache size in code units; it is empty when the
// declaration omits one.
type Family struct {
	span

	Name    string
	Size    string
	Members []string
}

func (*Family) node() {}

// DefName returns the declared name of any top-level definition node, or an
// empty string for other nodes.
func DefName(n Node) string {
	switch d := n.(type) {
	case *InstDef:
		return d.Name
	case *Super:
		return d.Name
	case *Macro:
		return d.Name
	case *Family:
		return d.Name
	default:
		return ""
	}
}

// DefKindName returns the DSL keyword that introduced a top-level definition
// node, or an empty string for other nodes.
func DefKindName(n Node) string {
	switch d := n.(type) {
	case *InstDef:
		return d.Kind.String()
	case *Super:
		return "super"
	case *Macro:
		return "macro"
	case *Family:
		return "family"
	default:
		return ""
	}
}
