package lang_test

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ardnew/opdef/lang"
)

// TestError_Wrapping verifies sentinel matching through Wrap and With.
func TestError_Wrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying failure")
	err := lang.ErrReadInput.Wrap(cause).With(slog.String("source", "test"))

	if !errors.Is(err, lang.ErrReadInput) {
		t.Error("errors.Is should match the sentinel after Wrap and With")
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	want := "failed to read input: underlying failure"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// TestSyntaxError_Error verifies position and token rendering.
func TestSyntaxError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  lang.SyntaxError
		want string
	}{
		{
			name: "full position with token",
			err: lang.SyntaxError{
				Message:  "expected stack effect",
				Filename: "bytecodes.c",
				Line:     3,
				Column:   17,
				Token:    ")",
			},
			want: `bytecodes.c:3:17: expected stack effect, got ")"`,
		},
		{
			name: "no filename",
			err: lang.SyntaxError{
				Message: "expected definition",
				Line:    1,
				Column:  1,
				Token:   "garbage",
			},
			want: `1:1: expected definition, got "garbage"`,
		},
		{
			name: "end of input has no token",
			err: lang.SyntaxError{
				Message: "expected op name",
				Line:    2,
				Column:  12,
			},
			want: "2:12: expected op name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSyntaxError_Snippet verifies the caret diagnostic rendering.
func TestSyntaxError_Snippet(t *testing.T) {
	t.Parallel()

	err := lang.SyntaxError{
		Message: "expected stack effect",
		Line:    2,
		Column:  9,
		Token:   "[",
		Source:  "inst(A) { }\ninst(B, [bad]) { }",
	}

	snippet := err.Snippet()

	lines := strings.Split(strings.TrimRight(snippet, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("snippet has %d lines, want 2:\n%s", len(lines), snippet)
	}

	if lines[0] != "  2 | inst(B, [bad]) { }" {
		t.Errorf("snippet line = %q", lines[0])
	}

	caret := strings.IndexByte(lines[1], '^')
	if caret < 0 {
		t.Fatalf("snippet has no caret: %q", lines[1])
	}

	// The caret column must line up with the offending source column: the
	// gutter is len("2")+5 wide, and the column is 1-based.
	if want := len("2") + 5 + err.Column - 1; caret != want {
		t.Errorf("caret at offset %d, want %d", caret, want)
	}
}

// TestSyntaxError_SnippetEmpty verifies missing context yields no snippet.
func TestSyntaxError_SnippetEmpty(t *testing.T) {
	t.Parallel()

	for _, err := range []lang.SyntaxError{
		{Message: "no source", Line: 1, Column: 1},
		{Message: "line out of range", Source: "one line", Line: 9, Column: 1},
		{Message: "no position", Source: "text"},
	} {
		if got := err.Snippet(); got != "" {
			t.Errorf("Snippet() = %q, want empty", got)
		}
	}
}

// TestSyntaxError_FromParse verifies errors produced by the grammar engine
// carry usable positions.
func TestSyntaxError_FromParse(t *testing.T) {
	t.Parallel()

	const input = "inst(A, (-- x)) { x = 1; }\nsuper(B) = ;"

	_, err := lang.ParseString(input, lang.WithFilename("test.c"))
	if err == nil {
		t.Fatal("ParseString() succeeded, want error")
	}

	var syntax *lang.SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("error is %T, want *lang.SyntaxError", err)
	}

	if syntax.Line != 2 {
		t.Errorf("Line = %d, want 2", syntax.Line)
	}

	if syntax.Token != ";" {
		t.Errorf("Token = %q, want %q", syntax.Token, ";")
	}

	if syntax.Snippet() == "" {
		t.Error("Snippet() is empty, want caret diagnostic")
	}
}
