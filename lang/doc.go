// Package lang parses the instruction-definition DSL consumed by an
// interpreter code generator. The DSL is embedded in C source files:
// definitions describe each interpreter instruction's name, stack effect,
// and inline cache layout, while the instruction bodies remain opaque C
// code that the generator copies through.
//
// # Grammar
//
// Informal EBNF of the top-level constructs:
//
//	Unit        → Definition* EOF
//	Definition  → Inst | Super | Macro | Family
//	Inst        → ("inst" | "op") "(" NAME ["," StackEffect] ")" Block
//	StackEffect → "(" [Inputs] "--" [Outputs] ")"
//	Inputs      → Input ("," Input)*
//	Input       → CacheEffect | NAME
//	Outputs     → NAME ("," NAME)*
//	CacheEffect → NAME "/" INTEGER
//	Super       → "super" "(" NAME ")" "=" NAME ("+" NAME)* ";"
//	Macro       → "macro" "(" NAME ")" "=" UOp ("+" UOp)* ";"
//	UOp         → CacheEffect | NAME
//	Family      → "family" "(" NAME ["," NAME] ")" "=" "{" Members "}" ";"
//	Members     → NAME ("," NAME)* [","]
//	Block       → balanced brace group, captured without interpretation
//
// The legacy no-effect header form is accepted for "inst" only. The parser
// is hand-written recursive descent with backtracking: each alternative
// either matches, cleanly declines with the cursor restored, or raises a
// fatal *SyntaxError that no other alternative may recover.
//
// # Usage
//
// Parse a complete source unit:
//
//	ast, err := lang.ParseString(src, lang.WithFilename("bytecodes.c"))
//
// Or drive the grammar engine directly:
//
//	p := lang.NewParser(src)
//	for p.More() {
//		def, err := p.Definition()
//		// ...
//	}
//
// Sources wrapping their definitions in marker comments are trimmed first
// with [ExtractRegion]. [Stream] provides cached, on-demand access to
// individual definitions; [Filter] evaluates expr-lang predicates over
// definition summaries.
//
// # Spans
//
// Every node records the half-open token-index range it was built from and
// reproduces its exact source text through [Node.Text]. A captured block's
// token list excludes the final closing brace, but its text spans the full
// brace-delimited group.
package lang
