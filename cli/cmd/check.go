package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/opdef/lang"
	"github.com/ardnew/opdef/log"
)

// Check parses a source file and reports each definition found, or the
// first syntax diagnostic encountered.
type Check struct {
	Region bool `help:"Parse only the region between bytecode markers" short:"r"`
	Quiet  bool `help:"Suppress per-definition output"                 short:"q"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := parseSource(ctx, c.Source, c.Region)
	if err != nil {
		reportSyntax(err)

		return ErrSyntax.Wrap(err)
	}

	counts := make(map[string]int)

	for _, def := range ast.Definitions {
		kind := lang.DefKindName(def)
		counts[kind]++

		if !c.Quiet {
			fmt.Printf("%-6s  %s\n", kind, lang.DefName(def))
		}
	}

	log.InfoContext(ctx, "check complete",
		slog.Int("definitions", len(ast.Definitions)),
		slog.Int("inst", counts["inst"]),
		slog.Int("op", counts["op"]),
		slog.Int("super", counts["super"]),
		slog.Int("macro", counts["macro"]),
		slog.Int("family", counts["family"]),
	)

	return nil
}
