package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/opdef/lang"
	"github.com/ardnew/opdef/log"
)

// List prints definition names and kinds, optionally filtered with an
// expr-lang predicate over each definition's summary map.
type List struct {
	Filter string `help:"Keep definitions matching an expr-lang predicate (e.g. 'kind == \"inst\"')" short:"e"`
	Region bool   `help:"Parse only the region between bytecode markers"                             short:"r"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := parseSource(ctx, l.Source, l.Region)
	if err != nil {
		reportSyntax(err)

		return err
	}

	defs := ast.Definitions

	if l.Filter != "" {
		defs, err = lang.Filter(defs, l.Filter)
		if err != nil {
			return err
		}

		log.DebugContext(ctx, "filter applied",
			slog.String("predicate", l.Filter),
			slog.Int("matched", len(defs)),
			slog.Int("total", len(ast.Definitions)),
		)
	}

	for _, def := range defs {
		fmt.Printf("%-6s  %s\n", lang.DefKindName(def), lang.DefName(def))
	}

	return nil
}
