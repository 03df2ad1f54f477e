package planner

import (
	"fmt"
	"strings"
)

// Tool describes one operation the planner may call.
type Tool struct {
	// Name is the wire name used in the "function" field.
	Name string

	// Params are the positional parameter names; optional ones are last.
	Params []string

	// Required is how many leading params must be present.
	Required int

	// Description is the one-line summary shown to the model.
	Description string
}

// Signature renders the tool as name(param, ...), marking optional params.
func (t Tool) Signature() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		if i >= t.Required {
			p += "?"
		}
		params[i] = p
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(params, ", "))
}

func writeTools(b *strings.Builder, tools []Tool) {
	for _, t := range tools {
		fmt.Fprintf(b, "- %s: %s\n", t.Signature(), t.Description)
	}
}
