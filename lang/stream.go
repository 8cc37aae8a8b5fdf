package lang

import (
	"io"
	"iter"
	"log/slog"

	"github.com/klauspost/readahead"
)

// Stream provides streaming access to the definitions in a source unit. It
// parses on demand and caches individual definitions through the global
// cache, not full ASTs.
type Stream struct {
	reader    io.Reader
	source    string
	sourceKey string
	metadata  *state
	opts      []Option
}

// NewStream creates a streaming parser from an io.Reader. The reader is not
// consumed until first definition access.
func NewStream(r io.Reader, opts ...Option) *Stream {
	return &Stream{
		reader:   r,
		metadata: new(state),
		opts:     opts,
	}
}

// NewStreamFromString creates a streaming parser from a source string.
func NewStreamFromString(source string, opts ...Option) *Stream {
	sourceKey := sourceKeyOf(source, "")

	return &Stream{
		source:    source,
		sourceKey: sourceKey,
		metadata:  registered(sourceKey),
		opts:      opts,
	}
}

// ensureParsed reads and parses the source exactly once, caching each
// definition individually.
func (s *Stream) ensureParsed() error {
	if s.source == "" && s.reader != nil {
		// Wrap reader with async read-ahead for concurrent I/O.
		ra := readahead.NewReader(s.reader)
		defer ra.Close()

		data, err := io.ReadAll(ra)
		if err != nil {
			s.metadata.err = ErrReadInput.Wrap(err).
				With(slog.String("source", "reader"))

			return s.metadata.err
		}

		s.source = string(data)
		s.sourceKey = sourceKeyOf(s.source, "")
		s.metadata = registered(s.sourceKey)
		s.reader = nil
	}

	return s.metadata.populate(s.sourceKey, s.source, s.opts...)
}

// GetDefinition retrieves a definition by its declared name. When several
// definitions share a name, as an instruction and its family commonly do,
// the first in declaration order wins.
func (s *Stream) GetDefinition(name string) (Node, error) {
	err := s.ensureParsed()
	if err != nil {
		return nil, err
	}

	for i, id := range s.metadata.names {
		if id != name {
			continue
		}

		if def, ok := definition(s.sourceKey, i); ok {
			return def, nil
		}
	}

	return nil, ErrDefinitionNotFound.
		With(slog.String("name", name))
}

// Names returns the declared names of all definitions in declaration order.
func (s *Stream) Names() ([]string, error) {
	err := s.ensureParsed()
	if err != nil {
		return nil, err
	}

	return s.metadata.names, nil
}

// Definitions returns an iterator over all definitions in the source. If
// parsing fails, the iterator yields no values; use [Stream.AST] when the
// failure itself matters.
func (s *Stream) Definitions() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		err := s.ensureParsed()
		if err != nil {
			return
		}

		for i := range s.metadata.names {
			if def, ok := definition(s.sourceKey, i); ok {
				if !yield(def) {
					return
				}
			}
		}
	}
}

// AST returns the complete parsed AST, reconstructed from cached
// definitions.
func (s *Stream) AST() (*AST, error) {
	err := s.ensureParsed()
	if err != nil {
		return nil, err
	}

	ast := &AST{
		Definitions: make([]Node, len(s.metadata.names)),
	}

	for i := range s.metadata.names {
		if def, ok := definition(s.sourceKey, i); ok {
			ast.Definitions[i] = def
		}
	}

	return ast, nil
}

// GetDefinitionFrom retrieves a definition by name from an io.Reader.
func GetDefinitionFrom(r io.Reader, name string) (Node, error) {
	return NewStream(r).GetDefinition(name)
}

// DefinitionsFrom returns an iterator over all definitions from an
// io.Reader.
func DefinitionsFrom(r io.Reader) iter.Seq[Node] {
	return NewStream(r).Definitions()
}
