package lang_test

import (
	"errors"
	"testing"

	"github.com/ardnew/opdef/lang"
)

func filterFixture(t *testing.T) []lang.Node {
	t.Helper()

	const input = `
		inst(LOAD_FAST, (-- value)) { value = GETLOCAL(oparg); }
		inst(POP_TOP, (value --)) { DECREF(value); }
		op(_GUARD, (obj -- obj)) { DEOPT_IF(!check(obj)); }
		family(LOAD_ATTR, SIZE) = { LOAD_ATTR_SLOT, LOAD_ATTR_MODULE };
	`

	ast, err := lang.ParseString(input)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	return ast.Definitions
}

// TestFilter verifies expr-lang predicates over definition summaries.
func TestFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		predicate string
		want      []string
	}{
		{
			name:      "by kind",
			predicate: `kind == "inst"`,
			want:      []string{"LOAD_FAST", "POP_TOP"},
		},
		{
			name:      "by input arity",
			predicate: `kind in ["inst", "op"] && len(inputs) > 0`,
			want:      []string{"POP_TOP", "_GUARD"},
		},
		{
			name:      "by member",
			predicate: `kind == "family" && "LOAD_ATTR_SLOT" in members`,
			want:      []string{"LOAD_ATTR"},
		},
		{
			name:      "by name prefix",
			predicate: `name startsWith "_"`,
			want:      []string{"_GUARD"},
		},
		{
			name:      "nothing matches",
			predicate: `kind == "macro"`,
			want:      nil,
		},
		{
			name:      "everything matches",
			predicate: `true`,
			want:      []string{"LOAD_FAST", "POP_TOP", "_GUARD", "LOAD_ATTR"},
		},
	}

	defs := filterFixture(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := lang.Filter(defs, tt.predicate)
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("matched %d definitions, want %d", len(got), len(tt.want))
			}

			for i, want := range tt.want {
				if name := lang.DefName(got[i]); name != want {
					t.Errorf("matched[%d] = %q, want %q", i, name, want)
				}
			}
		})
	}
}

// TestFilter_CompileError verifies malformed and non-boolean predicates are
// rejected at compile time.
func TestFilter_CompileError(t *testing.T) {
	t.Parallel()

	defs := filterFixture(t)

	for _, predicate := range []string{`kind ==`, `"just a string"`, `1 + 2`} {
		_, err := lang.Filter(defs, predicate)
		if !errors.Is(err, lang.ErrFilterCompile) {
			t.Errorf("Filter(%q) error = %v, want ErrFilterCompile", predicate, err)
		}
	}
}
