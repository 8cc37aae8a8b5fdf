package lang

import (
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

var (
	// globalCache stores definitions keyed by (source_hash:index). Individual
	// definitions are cached rather than full ASTs so lookups stay cheap.
	globalCache sync.Map

	// globalRegistry tracks source metadata by source hash.
	globalRegistry sync.Map
)

// state tracks parse state and the top-level definition list for a source.
type state struct {
	once  sync.Once
	names []string // declared name of each definition, in order
	err   error
}

// sourceKeyOf derives the cache key for a source text using xxh3. The
// filename participates so that identical text parsed under different names
// keeps distinct error positions.
func sourceKeyOf(source, filename string) string {
	hash := xxh3.Hash([]byte(source))
	if filename != "" {
		hash ^= xxh3.Hash([]byte(filename))
	}

	return strconv.FormatUint(hash, 36)
}

// registered returns the shared parse state for a source key, creating it on
// first use.
func registered(sourceKey string) *state {
	entry := new(state)
	value, _ := globalRegistry.LoadOrStore(sourceKey, entry)

	return value.(*state)
}

// populate parses source once per key and caches each definition
// individually. Concurrent callers share a single parse.
func (s *state) populate(sourceKey, source string, opts ...Option) error {
	s.once.Do(func() {
		ast, err := ParseString(source, opts...)
		if err != nil {
			s.err = err

			return
		}

		s.names = make([]string, len(ast.Definitions))
		for i, def := range ast.Definitions {
			s.names[i] = DefName(def)
			globalCache.Store(sourceKey+":"+strconv.Itoa(i), def)
		}
	})

	return s.err
}

// definition loads the i'th cached definition for a source key.
func definition(sourceKey string, i int) (Node, bool) {
	value, ok := globalCache.Load(sourceKey + ":" + strconv.Itoa(i))
	if !ok {
		return nil, false
	}

	return value.(Node), true
}

// ParseReader parses input from an io.Reader, caching the result so repeated
// parses of identical input are free. The reader is wrapped with async
// read-ahead so data is prefetched while earlier chunks tokenize.
func ParseReader(r io.Reader, opts ...Option) (*AST, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return parseStringCached(string(data), "", opts...)
}

// parseStringCached parses a string through the global definition cache.
func parseStringCached(
	source, filename string,
	opts ...Option,
) (*AST, error) {
	sourceKey := sourceKeyOf(source, filename)
	metadata := registered(sourceKey)

	err := metadata.populate(sourceKey, source, opts...)
	if err != nil {
		return nil, err
	}

	ast := &AST{
		Definitions: make([]Node, len(metadata.names)),
	}

	for i := range metadata.names {
		if def, ok := definition(sourceKey, i); ok {
			ast.Definitions[i] = def
		}
	}

	return ast, nil
}

// ClearCache removes all cached definitions and source metadata. This is
// primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache = sync.Map{}
	globalRegistry = sync.Map{}
}
