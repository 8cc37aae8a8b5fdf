package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/opdef/lang"
)

// maxSuggestions bounds the number of fuzzy-matched alternatives offered
// when a requested definition does not exist.
const maxSuggestions = 5

// Show prints the source text of a single definition.
type Show struct {
	Name string `arg:"" help:"Definition name to show" name:"name"`

	Kind   string `help:"Restrict match to one kind (inst, op, super, macro, family)" enum:",inst,op,super,macro,family" default:""`
	Region bool   `help:"Parse only the region between bytecode markers"              short:"r"`
	Source string `help:"Source input file or '-' for stdin"                          default:"-"                                   short:"f"`
}

// Run executes the show command.
func (s *Show) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := parseSource(ctx, s.Source, s.Region)
	if err != nil {
		reportSyntax(err)

		return err
	}

	names := make([]string, 0, len(ast.Definitions))

	for _, def := range ast.Definitions {
		if s.Kind != "" && lang.DefKindName(def) != s.Kind {
			continue
		}

		name := lang.DefName(def)
		if name == s.Name {
			fmt.Println(def.Text())

			return nil
		}

		names = append(names, name)
	}

	matches := fuzzy.Find(s.Name, names)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	if len(matches) > 0 {
		fmt.Fprintln(os.Stderr, "did you mean:")

		for _, m := range matches {
			fmt.Fprintf(os.Stderr, "  %s\n", m.Str)
		}
	}

	return lang.ErrDefinitionNotFound.
		With(slog.String("name", s.Name))
}
