package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/opdef/cli/cmd/repl"
	"github.com/ardnew/opdef/lang"
	"github.com/ardnew/opdef/log"
)

// Repl starts an interactive session for parsing definitions one at a time.
type Repl struct {
	Region bool   `help:"Parse only the region between bytecode markers" short:"r"`
	Source string `help:"Source input file to preload definitions from"  short:"f" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := r.preload(ctx)
	if err != nil {
		reportSyntax(err)

		return err
	}

	cacheDir := ""
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, ast, cacheDir, log.Default())
}

// preload parses definitions to seed the session with. Sources that would
// consume the terminal's stdin are skipped, since the interactive session
// needs it.
func (r *Repl) preload(ctx context.Context) (*lang.AST, error) {
	if r.Source != "" {
		return parseSource(ctx, r.Source, r.Region)
	}

	srcs := sourceFilesFrom(ctx)
	if srcs == nil || srcs.Stdin() != nil {
		return nil, nil
	}

	data, err := io.ReadAll(srcs)
	if err != nil {
		return nil, ErrOpenSource.Wrap(err)
	}

	text := string(data)

	if r.Region {
		text, err = lang.ExtractRegion(text, "", "")
		if err != nil {
			return nil, err
		}
	}

	log.TraceContext(ctx, "preloading definitions",
		slog.Int("bytes", len(text)),
	)

	return lang.ParseString(text,
		lang.WithFilename("<source>"),
		lang.WithLogger(log.Default()),
	)
}
