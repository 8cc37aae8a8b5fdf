package lang

import (
	"log/slog"
	"strings"
)

// AST is the parsed form of one source unit: its top-level definitions in
// declaration order. Each element is one of *InstDef, *Super, *Macro, or
// *Family.
type AST struct {
	Definitions []Node
}

// ParseString parses source text into its complete list of top-level
// definitions. Any leftover input that does not begin a definition is a
// syntax error; partial results are never returned.
func ParseString(source string, opts ...Option) (*AST, error) {
	p := NewParser(source, opts...)

	ast := &AST{}

	for p.More() {
		def, err := p.Definition()
		if err != nil {
			return nil, err
		}

		if def == nil {
			return nil, p.syntaxError("expected definition")
		}

		ast.Definitions = append(ast.Definitions, def)
	}

	p.logger.Debug("parse complete",
		slog.Int("definitions", len(ast.Definitions)),
	)

	return ast, nil
}

// Region marker lines recognized by ExtractRegion. Only the portion of an
// input file between these markers holds definitions; everything outside is
// surrounding code the generator copies through untouched.
const (
	BeginMarker = "// BEGIN BYTECODES //"
	EndMarker   = "// END BYTECODES //"
)

// ExtractRegion returns the portion of source between the begin and end
// marker lines, exclusive of the markers themselves. Markers match as whole
// lines after trimming surrounding whitespace. Empty marker strings default
// to [BeginMarker] and [EndMarker].
func ExtractRegion(source, begin, end string) (string, error) {
	if begin == "" {
		begin = BeginMarker
	}

	if end == "" {
		end = EndMarker
	}

	lines := strings.Split(source, "\n")
	first, last := -1, -1

	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case begin:
			if first < 0 {
				first = i
			}

		case end:
			if first >= 0 && last < 0 {
				last = i
			}
		}
	}

	if first < 0 {
		return "", ErrRegionNotFound.With(slog.String("marker", begin))
	}

	if last < 0 {
		return "", ErrRegionNotFound.With(slog.String("marker", end))
	}

	return strings.Join(lines[first+1:last], "\n"), nil
}
