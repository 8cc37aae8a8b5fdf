package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for AST.
func (ast *AST) MarshalJSON() ([]byte, error) {
	return json.Marshal(ast.ToMap())
}

// MarshalYAML implements the goccy/go-yaml interface marshaler for AST.
func (ast *AST) MarshalYAML() (any, error) {
	return ast.ToMap(), nil
}

// ToMap converts the AST to native Go values: one summary map per
// definition, in declaration order. Declared names repeat across kinds, an
// instruction and its family most commonly, so the result is ordered rather
// than keyed by name.
func (ast *AST) ToMap() []map[string]any {
	result := make([]map[string]any, len(ast.Definitions))

	for i, def := range ast.Definitions {
		result[i] = Summary(def)
	}

	return result
}

// Summary converts a single definition to a native Go map. Every summary
// carries "kind" and "name"; the remaining keys depend on the definition
// form. Unknown nodes summarize to nil.
func Summary(n Node) map[string]any {
	result := map[string]any{
		"kind": DefKindName(n),
		"name": DefName(n),
	}

	switch def := n.(type) {
	case *InstDef:
		result["inputs"] = inputSummaries(def.Inputs)
		result["outputs"] = outputSummaries(def.Outputs)

		if def.Block != nil {
			result["block"] = def.Block.Text()
		}

	case *Super:
		ops := make([]any, len(def.Ops))
		for i, op := range def.Ops {
			ops[i] = op.Name
		}

		result["ops"] = ops

	case *Macro:
		uops := make([]any, len(def.Uops))
		for i, uop := range def.Uops {
			uops[i] = effectSummary(uop)
		}

		result["uops"] = uops

	case *Family:
		if def.Size != "" {
			result["size"] = def.Size
		}

		members := make([]any, len(def.Members))
		for i, m := range def.Members {
			members[i] = m
		}

		result["members"] = members

	default:
		return nil
	}

	return result
}

func inputSummaries(inputs []InputEffect) []any {
	result := make([]any, len(inputs))

	for i, inp := range inputs {
		result[i] = effectSummary(inp)
	}

	return result
}

func outputSummaries(outputs []*StackEffect) []any {
	result := make([]any, len(outputs))

	for i, outp := range outputs {
		result[i] = map[string]any{"name": outp.Name}
	}

	return result
}

// effectSummary maps the effect and op-reference forms shared by stack
// effect declarations and macro bodies. Cache slots carry their size.
func effectSummary(n Node) any {
	switch e := n.(type) {
	case *StackEffect:
		return map[string]any{"name": e.Name}

	case *CacheEffect:
		return map[string]any{"name": e.Name, "size": e.Size}

	case *OpName:
		return map[string]any{"name": e.Name}

	default:
		return nil
	}
}
