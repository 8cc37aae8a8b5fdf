package lang_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/opdef/lang"
)

const streamSource = `
	inst(LOAD_FAST, (-- value)) { value = GETLOCAL(oparg); }
	op(_GUARD_TYPE, (obj -- obj)) { DEOPT_IF(!check(obj)); }
	super(LOAD_FAST__LOAD_FAST) = LOAD_FAST + LOAD_FAST;
	family(LOAD_FAST) = { LOAD_FAST_CHECK };
`

// TestStream_GetDefinition verifies name lookup, including the
// first-declaration-wins rule for names shared across kinds.
func TestStream_GetDefinition(t *testing.T) {
	lang.ClearCache()

	s := lang.NewStreamFromString(streamSource)

	// LOAD_FAST names both an instruction and a family; the instruction is
	// declared first.
	def, err := s.GetDefinition("LOAD_FAST")
	if err != nil {
		t.Fatalf("GetDefinition() error = %v", err)
	}

	if _, ok := def.(*lang.InstDef); !ok {
		t.Errorf("GetDefinition(LOAD_FAST) = %T, want *lang.InstDef", def)
	}

	def, err = s.GetDefinition("_GUARD_TYPE")
	if err != nil {
		t.Fatalf("GetDefinition() error = %v", err)
	}

	if inst, ok := def.(*lang.InstDef); !ok || inst.Kind != lang.KindOp {
		t.Errorf("GetDefinition(_GUARD_TYPE) = %#v, want op", def)
	}

	_, err = s.GetDefinition("MISSING")
	if !errors.Is(err, lang.ErrDefinitionNotFound) {
		t.Errorf("GetDefinition(MISSING) error = %v, want ErrDefinitionNotFound", err)
	}
}

// TestStream_Names verifies declaration-order name listing.
func TestStream_Names(t *testing.T) {
	lang.ClearCache()

	names, err := lang.NewStreamFromString(streamSource).Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}

	want := []string{
		"LOAD_FAST", "_GUARD_TYPE", "LOAD_FAST__LOAD_FAST", "LOAD_FAST",
	}

	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}

	for i, w := range want {
		if names[i] != w {
			t.Errorf("names[%d] = %q, want %q", i, names[i], w)
		}
	}
}

// TestStream_Definitions verifies the iterator yields all definitions in
// order and stops early when the consumer does.
func TestStream_Definitions(t *testing.T) {
	lang.ClearCache()

	s := lang.NewStreamFromString(streamSource)

	var kinds []string

	for def := range s.Definitions() {
		kinds = append(kinds, lang.DefKindName(def))
	}

	want := []string{"inst", "op", "super", "family"}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}

	for i, w := range want {
		if kinds[i] != w {
			t.Errorf("kinds[%d] = %q, want %q", i, kinds[i], w)
		}
	}

	count := 0

	for range s.Definitions() {
		count++

		break
	}

	if count != 1 {
		t.Errorf("early break consumed %d definitions, want 1", count)
	}
}

// TestStream_Reader verifies definitions stream from an io.Reader.
func TestStream_Reader(t *testing.T) {
	lang.ClearCache()

	def, err := lang.GetDefinitionFrom(
		strings.NewReader(streamSource), "LOAD_FAST__LOAD_FAST")
	if err != nil {
		t.Fatalf("GetDefinitionFrom() error = %v", err)
	}

	if _, ok := def.(*lang.Super); !ok {
		t.Errorf("got %T, want *lang.Super", def)
	}

	count := 0
	for range lang.DefinitionsFrom(strings.NewReader(streamSource)) {
		count++
	}

	if count != 4 {
		t.Errorf("iterated %d definitions, want 4", count)
	}
}

// TestStream_SyntaxError verifies a parse failure surfaces from every
// accessor and the iterator yields nothing.
func TestStream_SyntaxError(t *testing.T) {
	lang.ClearCache()

	s := lang.NewStreamFromString(`super(X) = ;`)

	if _, err := s.Names(); err == nil {
		t.Error("Names() succeeded, want error")
	}

	if _, err := s.AST(); err == nil {
		t.Error("AST() succeeded, want error")
	}

	for def := range s.Definitions() {
		t.Errorf("iterator yielded %v from invalid source", def)
	}
}

// TestParseReader verifies reader-based parsing and that repeated parses of
// identical input reuse cached definitions.
func TestParseReader(t *testing.T) {
	lang.ClearCache()

	first, err := lang.ParseReader(strings.NewReader(streamSource))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	if len(first.Definitions) != 4 {
		t.Fatalf("got %d definitions, want 4", len(first.Definitions))
	}

	second, err := lang.ParseReader(strings.NewReader(streamSource))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	for i := range first.Definitions {
		if first.Definitions[i] != second.Definitions[i] {
			t.Errorf("definitions[%d] reparsed instead of cached", i)
		}
	}

	lang.ClearCache()

	third, err := lang.ParseReader(strings.NewReader(streamSource))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	if len(third.Definitions) != 4 {
		t.Errorf("got %d definitions after ClearCache, want 4", len(third.Definitions))
	}
}
