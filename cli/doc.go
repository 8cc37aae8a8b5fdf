// Package cli contains the command line interface for opdef.
//
// # Usage
//
// The CLI provides logging and profiling configuration:
//
//	opdef --log-level=debug --pprof-mode=cpu check bytecodes.c
//
// # Commands
//
//   - check: parse definitions and report diagnostics
//   - dump:  print parsed definitions as JSON, YAML, or canonical syntax
//   - list:  list definition names and kinds, optionally filtered with an
//     expr-lang predicate
//   - show:  print one definition's source text, with fuzzy suggestions
//     when the name does not match
//   - repl:  parse definitions interactively
//
// # Parser
//
// The commands use the lang package's streaming parser for efficient access
// to definitions:
//
//   - [lang.NewStream]: Create a parser from an io.Reader
//   - [lang.NewStreamFromString]: Create a parser from a string
//   - [lang.Stream.GetDefinition]: Retrieve a specific definition by name
//   - [lang.Stream.Definitions]: Iterate over all definitions using iter.Seq
//   - [lang.Stream.AST]: Access the complete parsed AST
//
// The parser caches parsed definitions by source content, ensuring identical
// content is parsed only once even when accessed from multiple goroutines.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o opdef .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/opdef/pprof)
package cli
