package cmd

import (
	"context"
	"os"
)

// Dump parses input and prints the definitions in the chosen format.
type Dump struct {
	JSON JSON `cmd:"" default:"withargs" help:"Print as JSON (default)."`
	YAML YAML `cmd:""                    help:"Print as YAML."`
	AST  AST  `cmd:""                    help:"Print as canonical definition syntax."`
}

// JSON prints parsed definitions as JSON.
type JSON struct {
	Indent int  `default:"2" help:"Indent width for JSON output"             short:"i"`
	Region bool `            help:"Parse only the region between bytecode markers" short:"r"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := parseSource(ctx, j.Source, j.Region)
	if err != nil {
		reportSyntax(err)

		return err
	}

	err = ast.FormatJSON(os.Stdout, j.Indent)
	if err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// YAML prints parsed definitions as YAML.
type YAML struct {
	Indent int  `default:"2" help:"Indent width for YAML output"             short:"i"`
	Region bool `            help:"Parse only the region between bytecode markers" short:"r"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := parseSource(ctx, y.Source, y.Region)
	if err != nil {
		reportSyntax(err)

		return err
	}

	err = ast.FormatYAML(ctx, os.Stdout, y.Indent)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// AST prints parsed definitions in canonical definition syntax.
type AST struct {
	Region bool `help:"Parse only the region between bytecode markers" short:"r"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := parseSource(ctx, a.Source, a.Region)
	if err != nil {
		reportSyntax(err)

		return err
	}

	return ast.Format(os.Stdout)
}
