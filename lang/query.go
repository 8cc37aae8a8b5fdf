package lang

import (
	"log/slog"

	"github.com/expr-lang/expr"
)

// Filter evaluates a boolean expr-lang predicate against each definition's
// summary map and returns the definitions for which it holds, preserving
// order. The predicate sees the summary keys as variables, for example:
//
//	kind == "inst" && len(inputs) > 0
//	kind == "family" && "LOAD_ATTR" in members
func Filter(defs []Node, predicate string) ([]Node, error) {
	program, err := expr.Compile(predicate, expr.AsBool())
	if err != nil {
		return nil, ErrFilterCompile.Wrap(err).
			With(slog.String("predicate", predicate))
	}

	var result []Node

	for _, def := range defs {
		keep, err := expr.Run(program, Summary(def))
		if err != nil {
			return nil, ErrFilterEvaluate.Wrap(err).
				With(
					slog.String("predicate", predicate),
					slog.String("name", DefName(def)),
				)
		}

		if ok, _ := keep.(bool); ok {
			result = append(result, def)
		}
	}

	return result, nil
}
