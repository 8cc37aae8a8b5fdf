package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/opdef/lang"
	"github.com/ardnew/opdef/log"
)

// loadSource returns the name and text of the input a command should parse.
// A path of "-" selects the source files aggregated on the command line, or
// stdin when none were given.
func loadSource(ctx context.Context, path string) (string, string, error) {
	if path != "" && path != stdinSource {
		file, err := os.Open(path)
		if err != nil {
			return "", "", ErrOpenSource.Wrap(err).
				With(slog.String("path", path))
		}
		defer file.Close()

		data, err := io.ReadAll(bufio.NewReader(file))
		if err != nil {
			return "", "", ErrOpenSource.Wrap(err).
				With(slog.String("path", path))
		}

		return path, string(data), nil
	}

	if srcs := sourceFilesFrom(ctx); srcs != nil {
		data, err := io.ReadAll(srcs)
		if err != nil {
			return "", "", ErrOpenSource.Wrap(err)
		}

		return "<source>", string(data), nil
	}

	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return "", "", ErrOpenSource.Wrap(err)
	}

	return "<stdin>", string(data), nil
}

// parseSource loads and parses a command's input. When region is true, only
// the text between the bytecode region markers is parsed.
func parseSource(
	ctx context.Context,
	path string,
	region bool,
) (*lang.AST, error) {
	name, text, err := loadSource(ctx, path)
	if err != nil {
		return nil, err
	}

	if region {
		text, err = lang.ExtractRegion(text, "", "")
		if err != nil {
			return nil, err
		}
	}

	log.TraceContext(ctx, "parsing source",
		slog.String("name", name),
		slog.Int("bytes", len(text)),
		slog.Bool("region", region),
	)

	return lang.ParseString(text,
		lang.WithFilename(name),
		lang.WithLogger(log.Default()),
	)
}

// reportSyntax prints a syntax error with its caret snippet to stderr, so
// diagnostics stay readable regardless of the structured log format.
func reportSyntax(err error) {
	var syntax *lang.SyntaxError
	if !errors.As(err, &syntax) {
		return
	}

	fmt.Fprintln(os.Stderr, syntax.Error())

	if snippet := syntax.Snippet(); snippet != "" {
		fmt.Fprint(os.Stderr, snippet)
	}
}
