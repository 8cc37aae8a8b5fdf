package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the AST in canonical definition syntax to the writer. The
// output is reconstructed from the parsed form, so header spacing is
// normalized; captured blocks are reproduced from their original source
// text verbatim.
func (ast *AST) Format(w io.Writer) error {
	for i, def := range ast.Definitions {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if err := formatDefinition(def, w); err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes the AST as JSON to the writer.
func (ast *AST) FormatJSON(w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(ast, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(ast)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the AST as YAML to the writer.
func (ast *AST) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ast.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// formatDefinition formats a single top-level definition.
func formatDefinition(n Node, w io.Writer) error {
	switch def := n.(type) {
	case *InstDef:
		return formatInst(def, w)

	case *Super:
		ops := make([]string, len(def.Ops))
		for i, op := range def.Ops {
			ops[i] = op.Name
		}

		_, err := fmt.Fprintf(w, "super(%s) = %s;\n",
			def.Name, strings.Join(ops, " + "))

		return err

	case *Macro:
		uops := make([]string, len(def.Uops))
		for i, uop := range def.Uops {
			uops[i] = effectString(uop)
		}

		_, err := fmt.Fprintf(w, "macro(%s) = %s;\n",
			def.Name, strings.Join(uops, " + "))

		return err

	case *Family:
		head := def.Name
		if def.Size != "" {
			head += ", " + def.Size
		}

		_, err := fmt.Fprintf(w, "family(%s) = { %s };\n",
			head, strings.Join(def.Members, ", "))

		return err

	default:
		_, err := fmt.Fprintln(w, "<unknown>")

		return err
	}
}

// formatInst formats an instruction or op definition. The body block is
// reproduced from its source text rather than reconstructed, braces
// included.
func formatInst(def *InstDef, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s(%s", def.Kind, def.Name); err != nil {
		return err
	}

	if def.Kind == KindOp || len(def.Inputs) > 0 || len(def.Outputs) > 0 {
		inputs := make([]string, len(def.Inputs))
		for i, inp := range def.Inputs {
			inputs[i] = effectString(inp)
		}

		outputs := make([]string, len(def.Outputs))
		for i, outp := range def.Outputs {
			outputs[i] = outp.Name
		}

		_, err := fmt.Fprintf(w, ", (%s -- %s)",
			strings.Join(inputs, ", "), strings.Join(outputs, ", "))
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(w, ") "); err != nil {
		return err
	}

	body := "{}"
	if def.Block != nil {
		body = def.Block.Text()
	}

	_, err := fmt.Fprintln(w, body)

	return err
}

// effectString renders an input effect or macro element in source syntax.
func effectString(n Node) string {
	switch e := n.(type) {
	case *StackEffect:
		return e.Name

	case *CacheEffect:
		return e.String()

	case *OpName:
		return e.Name

	default:
		return "<unknown>"
	}
}
