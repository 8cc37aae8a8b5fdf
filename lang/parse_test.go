package lang_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/opdef/lang"
)

// parseOne parses a source holding exactly one definition.
func parseOne(t *testing.T, src string) lang.Node {
	t.Helper()

	ast, err := lang.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if len(ast.Definitions) != 1 {
		t.Fatalf("got %d definitions, want 1", len(ast.Definitions))
	}

	return ast.Definitions[0]
}

// TestParse_InstForms verifies the three instruction header forms.
func TestParse_InstForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantKind lang.DefKind
		wantName string
		nInputs  int
		nOutputs int
	}{
		{
			name:     "legacy no effect",
			input:    `inst(EXIT_INTERPRETER) { goto exit; }`,
			wantKind: lang.KindInst,
			wantName: "EXIT_INTERPRETER",
		},
		{
			name:     "inst with effect",
			input:    `inst(LOAD_FAST, (-- value)) { value = GETLOCAL(oparg); }`,
			wantKind: lang.KindInst,
			wantName: "LOAD_FAST",
			nOutputs: 1,
		},
		{
			name:     "op with effect",
			input:    `op(_BINARY_OP, (lhs, rhs -- res)) { res = op(lhs, rhs); }`,
			wantKind: lang.KindOp,
			wantName: "_BINARY_OP",
			nInputs:  2,
			nOutputs: 1,
		},
		{
			name:     "empty inputs and outputs",
			input:    `inst(NOP, (--)) { }`,
			wantKind: lang.KindInst,
			wantName: "NOP",
		},
		{
			name:     "inputs only",
			input:    `inst(POP_TOP, (value --)) { DECREF(value); }`,
			wantKind: lang.KindInst,
			wantName: "POP_TOP",
			nInputs:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			def, ok := parseOne(t, tt.input).(*lang.InstDef)
			if !ok {
				t.Fatalf("got %T, want *lang.InstDef", def)
			}

			if def.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", def.Kind, tt.wantKind)
			}

			if def.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", def.Name, tt.wantName)
			}

			if len(def.Inputs) != tt.nInputs {
				t.Errorf("got %d inputs, want %d", len(def.Inputs), tt.nInputs)
			}

			if len(def.Outputs) != tt.nOutputs {
				t.Errorf("got %d outputs, want %d", len(def.Outputs), tt.nOutputs)
			}

			if def.Block == nil {
				t.Error("Block = nil, want captured body")
			}
		})
	}
}

// TestParse_CacheEffects verifies inline cache slots in input lists.
func TestParse_CacheEffects(t *testing.T) {
	t.Parallel()

	const input = `inst(LOAD_ATTR, (counter/1, unused/8, owner -- res)) { body; }`

	def := parseOne(t, input).(*lang.InstDef)

	if len(def.Inputs) != 3 {
		t.Fatalf("got %d inputs, want 3", len(def.Inputs))
	}

	counter, ok := def.Inputs[0].(*lang.CacheEffect)
	if !ok {
		t.Fatalf("inputs[0] is %T, want *lang.CacheEffect", def.Inputs[0])
	}

	if counter.Name != "counter" || counter.Size != 1 {
		t.Errorf("inputs[0] = %s, want counter/1", counter)
	}

	unused, ok := def.Inputs[1].(*lang.CacheEffect)
	if !ok {
		t.Fatalf("inputs[1] is %T, want *lang.CacheEffect", def.Inputs[1])
	}

	if unused.Name != "unused" || unused.Size != 8 {
		t.Errorf("inputs[1] = %s, want unused/8", unused)
	}

	owner, ok := def.Inputs[2].(*lang.StackEffect)
	if !ok {
		t.Fatalf("inputs[2] is %T, want *lang.StackEffect", def.Inputs[2])
	}

	if owner.Name != "owner" {
		t.Errorf("inputs[2].Name = %q, want %q", owner.Name, "owner")
	}
}

// TestParse_Super verifies super definitions.
func TestParse_Super(t *testing.T) {
	t.Parallel()

	const input = `super(LOAD_FAST__LOAD_FAST) = LOAD_FAST + LOAD_FAST;`

	def := parseOne(t, input).(*lang.Super)

	if def.Name != "LOAD_FAST__LOAD_FAST" {
		t.Errorf("Name = %q", def.Name)
	}

	if len(def.Ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(def.Ops))
	}

	for i, op := range def.Ops {
		if op.Name != "LOAD_FAST" {
			t.Errorf("ops[%d].Name = %q, want %q", i, op.Name, "LOAD_FAST")
		}
	}
}

// TestParse_Macro verifies macro definitions mixing op names and cache slots.
func TestParse_Macro(t *testing.T) {
	t.Parallel()

	const input = `macro(LOAD_ATTR) = _SPECIALIZE_LOAD_ATTR + unused/8 + _LOAD_ATTR;`

	def := parseOne(t, input).(*lang.Macro)

	if def.Name != "LOAD_ATTR" {
		t.Errorf("Name = %q", def.Name)
	}

	if len(def.Uops) != 3 {
		t.Fatalf("got %d uops, want 3", len(def.Uops))
	}

	if op, ok := def.Uops[0].(*lang.OpName); !ok || op.Name != "_SPECIALIZE_LOAD_ATTR" {
		t.Errorf("uops[0] = %#v, want op _SPECIALIZE_LOAD_ATTR", def.Uops[0])
	}

	cache, ok := def.Uops[1].(*lang.CacheEffect)
	if !ok || cache.Name != "unused" || cache.Size != 8 {
		t.Errorf("uops[1] = %#v, want cache unused/8", def.Uops[1])
	}

	if op, ok := def.Uops[2].(*lang.OpName); !ok || op.Name != "_LOAD_ATTR" {
		t.Errorf("uops[2] = %#v, want op _LOAD_ATTR", def.Uops[2])
	}
}

// TestParse_Family verifies family definitions with and without a size
// variable.
func TestParse_Family(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantSize    string
		wantMembers []string
	}{
		{
			name: "with size",
			input: `family(BINARY_OP, INLINE_CACHE_ENTRIES) = {
				BINARY_OP_ADD_INT, BINARY_OP_MULTIPLY_FLOAT };`,
			wantSize:    "INLINE_CACHE_ENTRIES",
			wantMembers: []string{"BINARY_OP_ADD_INT", "BINARY_OP_MULTIPLY_FLOAT"},
		},
		{
			name:        "without size",
			input:       `family(STORE_FAST) = { STORE_FAST_LOAD_FAST };`,
			wantMembers: []string{"STORE_FAST_LOAD_FAST"},
		},
		{
			name:        "trailing comma tolerated",
			input:       `family(CALL) = { CALL_PY_EXACT_ARGS, CALL_TYPE_1, };`,
			wantMembers: []string{"CALL_PY_EXACT_ARGS", "CALL_TYPE_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			def := parseOne(t, tt.input).(*lang.Family)

			if def.Size != tt.wantSize {
				t.Errorf("Size = %q, want %q", def.Size, tt.wantSize)
			}

			if len(def.Members) != len(tt.wantMembers) {
				t.Fatalf("got %d members, want %d",
					len(def.Members), len(tt.wantMembers))
			}

			for i, want := range tt.wantMembers {
				if def.Members[i] != want {
					t.Errorf("members[%d] = %q, want %q",
						i, def.Members[i], want)
				}
			}
		})
	}
}

// TestParse_Errors verifies malformed definitions fail rather than parse
// loosely.
func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "op without effect list",
			input: `op(NOP) { }`,
		},
		{
			name:  "missing effect separator",
			input: `inst(X, (a, b)) { }`,
		},
		{
			name:  "cache slot without size",
			input: `inst(X, (counter/ -- res)) { }`,
		},
		{
			name:  "cache slot size not integer",
			input: `inst(X, (counter/1.5 -- res)) { }`,
		},
		{
			name:  "unterminated block",
			input: `inst(X, (-- res)) { if (a) {`,
		},
		{
			name:  "super missing semicolon",
			input: `super(X) = A + B`,
		},
		{
			name:  "super empty op list",
			input: `super(X) = ;`,
		},
		{
			name:  "macro dangling plus",
			input: `macro(X) = A + ;`,
		},
		{
			name:  "family malformed member list",
			input: `family(X) = { A, B + };`,
		},
		{
			name:  "family missing size identifier",
			input: `family(X, 42) = { A };`,
		},
		{
			name:  "stray tokens",
			input: `inst(X, (-- res)) { } garbage here`,
		},
		{
			name:  "header without body",
			input: `inst(X, (-- res))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := lang.ParseString(tt.input)
			if err == nil {
				t.Fatal("ParseString() succeeded, want error")
			}

			var syntax *lang.SyntaxError
			if !errors.As(err, &syntax) {
				t.Errorf("error is %T, want *lang.SyntaxError", err)
			}
		})
	}
}

// TestParse_Backtracking verifies a failed alternative leaves no residue in
// the constructs parsed after it.
func TestParse_Backtracking(t *testing.T) {
	t.Parallel()

	// "super" and "family" are ordinary identifiers when their construct
	// does not follow, so the inst alternative must consume them after the
	// keyword rules rewind.
	const input = `
		inst(FIRST, (super, family -- macro)) { body; }
		super(SECOND) = FIRST + FIRST;
	`

	ast, err := lang.ParseString(input)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if len(ast.Definitions) != 2 {
		t.Fatalf("got %d definitions, want 2", len(ast.Definitions))
	}

	inst, ok := ast.Definitions[0].(*lang.InstDef)
	if !ok || inst.Name != "FIRST" {
		t.Errorf("definitions[0] = %#v, want inst FIRST", ast.Definitions[0])
	}

	sup, ok := ast.Definitions[1].(*lang.Super)
	if !ok || sup.Name != "SECOND" {
		t.Errorf("definitions[1] = %#v, want super SECOND", ast.Definitions[1])
	}
}

// TestParse_BlockCapture verifies the body block is captured opaquely with
// nesting, comments, and directives preserved.
func TestParse_BlockCapture(t *testing.T) {
	t.Parallel()

	const body = `{
		// leading comment
		if (oparg > 0) {
			int x[2] = { 0, 1 };
			f(x[0], x[1]);
		}
#if ENABLE_SPECIALIZATION
		specialize(oparg);
#endif
		/* trailing */
	}`

	def := parseOne(t, "inst(X, (-- res)) "+body).(*lang.InstDef)

	text := def.Block.Text()
	if text != body {
		t.Errorf("Block.Text() = %q, want %q", text, body)
	}

	for _, fragment := range []string{
		"// leading comment",
		"#if ENABLE_SPECIALIZATION",
		"/* trailing */",
		"{ 0, 1 }",
	} {
		if !strings.Contains(text, fragment) {
			t.Errorf("Block.Text() missing %q", fragment)
		}
	}
}

// TestParse_SpanText verifies every definition's span reproduces its source.
func TestParse_SpanText(t *testing.T) {
	t.Parallel()

	sources := []string{
		`inst(LOAD_FAST, (-- value)) { value = GETLOCAL(oparg); }`,
		`super(PAIR) = A + B;`,
		`macro(M) = _A + unused/4 + _B;`,
		`family(F, SIZE) = { F_FAST, F_SLOW };`,
	}

	for _, src := range sources {
		def := parseOne(t, src)

		if got := def.Text(); got != src {
			t.Errorf("Text() = %q, want %q", got, src)
		}
	}
}

// TestParse_RoundTrip verifies a definition's reproduced source parses to an
// equivalent definition.
func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	const input = `
		inst(LOAD_CONST, (-- value)) { value = GETITEM(consts, oparg); }
		op(_GUARD, (obj -- obj)) { DEOPT_IF(!check(obj)); }
		macro(SPECIAL) = _GUARD + counter/1 + _GUARD;
		family(LOAD_CONST) = { LOAD_CONST_IMMORTAL };
	`

	ast, err := lang.ParseString(input)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	for _, def := range ast.Definitions {
		again, err := lang.ParseString(def.Text())
		if err != nil {
			t.Fatalf("reparse of %q error = %v", lang.DefName(def), err)
		}

		if len(again.Definitions) != 1 {
			t.Fatalf("reparse of %q yielded %d definitions",
				lang.DefName(def), len(again.Definitions))
		}

		if got := lang.DefName(again.Definitions[0]); got != lang.DefName(def) {
			t.Errorf("reparsed name = %q, want %q", got, lang.DefName(def))
		}

		if got := lang.DefKindName(again.Definitions[0]); got != lang.DefKindName(def) {
			t.Errorf("reparsed kind = %q, want %q", got, lang.DefKindName(def))
		}
	}
}

// TestParser_Definition verifies the streaming one-at-a-time entry point.
func TestParser_Definition(t *testing.T) {
	t.Parallel()

	const input = `
		inst(A, (-- x)) { x = 1; }
		inst(B, (x --)) { use(x); }
	`

	p := lang.NewParser(input)

	var names []string

	for p.More() {
		def, err := p.Definition()
		if err != nil {
			t.Fatalf("Definition() error = %v", err)
		}

		if def == nil {
			t.Fatal("Definition() = nil before end of input")
		}

		names = append(names, lang.DefName(def))
	}

	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("parsed %v, want [A B]", names)
	}
}

// TestParse_CommentsBetweenDefinitions verifies comments and directives
// between definitions are skipped.
func TestParse_CommentsBetweenDefinitions(t *testing.T) {
	t.Parallel()

	const input = `
		// family of specialized loads
		inst(A, (-- x)) { x = 1; }
		#define UNUSED
		/* interstitial */
		super(AA) = A + A;
	`

	ast, err := lang.ParseString(input)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if len(ast.Definitions) != 2 {
		t.Errorf("got %d definitions, want 2", len(ast.Definitions))
	}
}
